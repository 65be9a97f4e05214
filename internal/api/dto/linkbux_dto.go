package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ==================== 宽松数值类型 ====================

// Linkbux 接口的数值字段时而是数字时而是字符串，
// 这里统一用宽松类型解码，空字符串按零值处理

// FlexFloat 兼容 "12.34" / 12.34 两种形式的金额字段
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt64 兼容 "1718236800" / 1718236800 两种形式的时间戳字段
type FlexInt64 int64

func (i *FlexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*i = 0
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*i = FlexInt64(v)
	return nil
}

// ==================== Linkbux 返回的业务数据 ====================

// LinkbuxTransaction 交易记录（op=transaction_v2）
type LinkbuxTransaction struct {
	LinkbuxID      string    `json:"linkbux_id"`
	MID            string    `json:"mid"`
	UID            string    `json:"uid"`
	OrderTime      FlexInt64 `json:"order_time"` // Unix 秒
	SaleAmount     FlexFloat `json:"sale_amount"`
	SaleComm       FlexFloat `json:"sale_comm"`
	ValidationDate string    `json:"validation_date"`
	OrderUnit      FlexInt64 `json:"order_unit"`
	IP             string    `json:"ip"`
	RefererURL     string    `json:"referer_url"`
	Status         string    `json:"status"`
	MerchantName   string    `json:"merchant_name"`
}

// LinkbuxClick 点击记录（op=user_click）
type LinkbuxClick struct {
	MID          string    `json:"mid"`
	MerchantName string    `json:"merchant_name"`
	UID          string    `json:"uid"`
	IP           string    `json:"ip"`
	ClickTime    FlexInt64 `json:"click_time"` // Unix 秒
}

// LinkbuxAd 广告条目（op=monetization_api）
type LinkbuxAd struct {
	MID             string          `json:"mid"`
	MerchantName    string          `json:"merchant_name"`
	CommRate        string          `json:"comm_rate"`
	TrackingURL     string          `json:"tracking_url"`
	Relationship    string          `json:"relationship"`
	CommDetail      string          `json:"comm_detail"`
	SiteURL         string          `json:"site_url"`
	Logo            string          `json:"logo"`
	Categories      json.RawMessage `json:"categories"`
	OfferType       string          `json:"offer_type"`
	AvgPaymentCycle string          `json:"avg_payment_cycle"`
	AvgPayout       string          `json:"avg_payout"`
	PrimaryRegion   string          `json:"primary_region"`
	SupportRegion   string          `json:"support_region"`
	RD              string          `json:"rd"`
}

// LinkbuxSettlement 结算记录（op=merchant_commission）
type LinkbuxSettlement struct {
	MID            string    `json:"mid"`
	SettlementID   string    `json:"settlement_id"`
	SettlementDate string    `json:"settlement_date"` // YYYY-MM-DD
	SaleComm       FlexFloat `json:"sale_comm"`
	PaidDate       string    `json:"paid_date"`
	PaymentID      string    `json:"payment_id"`
	SettlementType string    `json:"settlement_type"`
	MerchantName   string    `json:"merchant_name"`
	Note           string    `json:"note"`
}
