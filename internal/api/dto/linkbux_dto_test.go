package dto

import (
	"encoding/json"
	"testing"
)

func TestFlexTypes_MixedForms(t *testing.T) {
	// 平台同一字段时而带引号时而不带，空串按零值
	raw := `[
		{"sale_amount":"12.34","order_time":"1736467200"},
		{"sale_amount":56.78,"order_time":1736467201},
		{"sale_amount":"","order_time":null}
	]`

	var txs []LinkbuxTransaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		t.Fatalf("混合形式应可解析: %v", err)
	}

	if float64(txs[0].SaleAmount) != 12.34 || int64(txs[0].OrderTime) != 1736467200 {
		t.Errorf("带引号形式解析不符: %+v", txs[0])
	}
	if float64(txs[1].SaleAmount) != 56.78 || int64(txs[1].OrderTime) != 1736467201 {
		t.Errorf("数字形式解析不符: %+v", txs[1])
	}
	if float64(txs[2].SaleAmount) != 0 || int64(txs[2].OrderTime) != 0 {
		t.Errorf("空值应按零值处理: %+v", txs[2])
	}
}

func TestFlexTypes_Garbage(t *testing.T) {
	var f FlexFloat
	if err := json.Unmarshal([]byte(`"abc"`), &f); err == nil {
		t.Error("非数字字符串应报错")
	}
	var i FlexInt64
	if err := json.Unmarshal([]byte(`"12.5"`), &i); err == nil {
		t.Error("小数不应解析为整型时间戳")
	}
}
