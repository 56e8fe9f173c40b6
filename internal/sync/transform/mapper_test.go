package transform

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/gateway"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

func TestMapperFor(t *testing.T) {
	for _, source := range []string{gateway.SourceUAU, gateway.SourceSienge} {
		m, err := MapperFor(source)
		if err != nil {
			t.Fatalf("MapperFor(%s): %v", source, err)
		}
		if m.Source() != source {
			t.Fatalf("mapper source=%s want=%s", m.Source(), source)
		}
	}
	if _, err := MapperFor("totvs"); err == nil {
		t.Fatal("MapperFor of unknown source must fail")
	}
}

func TestUAUMapper_MapInstallment(t *testing.T) {
	rec := gateway.RawRecord{
		"num_venda":          "V-1021",
		"data_vencimento":    "15/03/2025",
		"valor_parcela":      "1.250,00",
		"valor_pago":         "1.250,00",
		"saldo_parcela":      "0,00",
		"tipo_origem":        "VD",
		"status_parcela":     "0",
		"situacao_pagamento": "Pago",
		"tipo_parcela":       "P",
		"numero_parcela":     "3/24",
		"data_pagamento":     "10/03/2025",
	}

	inst, err := UAUMapper{}.MapInstallment(rec)
	if err != nil {
		t.Fatalf("MapInstallment: %v", err)
	}
	if inst.ContractKey != "V-1021" {
		t.Fatalf("contract key=%s want=V-1021", inst.ContractKey)
	}
	if inst.DueDate.Format("2006-01-02") != "2025-03-15" {
		t.Fatalf("due=%s want=2025-03-15", inst.DueDate.Format("2006-01-02"))
	}
	if inst.OriginalValue.Cmp(decimal.NewFromInt(1250)) != 0 {
		t.Fatalf("original=%s want=1250", inst.OriginalValue)
	}
	if inst.OriginType != receivable.OriginDirectSale {
		t.Fatalf("origin=%s want=direct_sale", inst.OriginType)
	}
	if inst.Status != receivable.StatusActive {
		t.Fatalf("status=%s want=active", inst.Status)
	}
	if !inst.Paid() {
		t.Fatal("installment must report paid")
	}
	if inst.Kind != receivable.KindRegular {
		t.Fatalf("kind=%s want=regular", inst.Kind)
	}
	if inst.Sequence != 3 || inst.SequenceTotal != 24 {
		t.Fatalf("sequence=%d/%d want=3/24", inst.Sequence, inst.SequenceTotal)
	}
	if inst.PaymentDate == nil || inst.PaymentDate.Format("2006-01-02") != "2025-03-10" {
		t.Fatalf("payment date=%v want=2025-03-10", inst.PaymentDate)
	}
}

func TestUAUMapper_MissingBalanceDerivedFromPaid(t *testing.T) {
	rec := gateway.RawRecord{
		"num_venda":       "V-7",
		"data_vencimento": "2025-05-01",
		"valor_parcela":   "1000,00",
		"valor_pago":      "400,00",
		"status_parcela":  "0",
	}

	inst, err := UAUMapper{}.MapInstallment(rec)
	if err != nil {
		t.Fatalf("MapInstallment: %v", err)
	}
	if inst.Balance.Cmp(decimal.NewFromInt(600)) != 0 {
		t.Fatalf("balance=%s want=600", inst.Balance)
	}
}

func TestUAUMapper_MalformedInstallment(t *testing.T) {
	cases := []gateway.RawRecord{
		{"num_venda": "V-1", "valor_parcela": "100,00"},        // no due date
		{"num_venda": "V-1", "data_vencimento": "2025-01-01"},  // no value
		{"num_venda": "V-1", "data_vencimento": "not-a-date", "valor_parcela": "100,00"},
	}
	mapper := UAUMapper{}
	for i, rec := range cases {
		if _, err := mapper.MapInstallment(rec); !errors.Is(err, ErrMalformedRecord) {
			t.Fatalf("case %d: err=%v want ErrMalformedRecord", i, err)
		}
	}
}

func TestUAUMapper_MapContract(t *testing.T) {
	rec := gateway.RawRecord{
		"num_venda":    "V-1021",
		"num_revenda":  "1",
		"cod_pessoa":   "C-88",
		"status_venda": "Ativo",
		"valor_venda":  "350.000,00",
		"prazo_meses":  "120",
		"data_venda":   "10/01/2024",
	}

	c, err := UAUMapper{}.MapContract(rec)
	if err != nil {
		t.Fatalf("MapContract: %v", err)
	}
	if c.CodContract != "V-1021" || c.VariantKey != "1" {
		t.Fatalf("contract=%s variant=%s want V-1021/1", c.CodContract, c.VariantKey)
	}
	if c.Status != store.ContractStatusActive {
		t.Fatalf("status=%s want=active", c.Status)
	}
	if c.SignedValue.Cmp(decimal.NewFromInt(350000)) != 0 {
		t.Fatalf("signed value=%s want=350000", c.SignedValue)
	}
	if c.TermMonths != 120 {
		t.Fatalf("term=%d want=120", c.TermMonths)
	}
	if c.SigningDate == nil || c.SigningDate.Format("2006-01-02") != "2024-01-10" {
		t.Fatalf("signing date=%v want=2024-01-10", c.SigningDate)
	}
}

func TestUAUMapper_VariantDefaultsToZero(t *testing.T) {
	rec := gateway.RawRecord{
		"num_venda":   "V-2",
		"valor_venda": "1000,00",
	}
	c, err := UAUMapper{}.MapContract(rec)
	if err != nil {
		t.Fatalf("MapContract: %v", err)
	}
	if c.VariantKey != "0" {
		t.Fatalf("variant=%s want=0", c.VariantKey)
	}
}

func TestSiengeMapper_MapInstallment(t *testing.T) {
	rec := gateway.RawRecord{
		"billReceivableId":  "551",
		"dueDate":           "2025-06-10",
		"originalValue":     "2500.00",
		"paidValue":         "0",
		"balance":           "2500.00",
		"originId":          "1",
		"statusId":          "0",
		"conditionType":     "PM",
		"installmentNumber": "12/36",
	}

	inst, err := SiengeMapper{}.MapInstallment(rec)
	if err != nil {
		t.Fatalf("MapInstallment: %v", err)
	}
	if inst.ContractKey != "551" {
		t.Fatalf("contract key=%s want=551", inst.ContractKey)
	}
	if inst.OriginType != receivable.OriginDirectSale {
		t.Fatalf("origin=%s want=direct_sale", inst.OriginType)
	}
	if inst.Paid() {
		t.Fatal("open installment must not report paid")
	}
	if inst.SettlementStatus != receivable.SettlementOpen {
		t.Fatalf("settlement=%s want=open", inst.SettlementStatus)
	}
	if inst.Kind != receivable.KindRegular {
		t.Fatalf("kind=%s want=regular", inst.Kind)
	}
}

func TestSiengeMapper_MapInvoiceFromCSVRow(t *testing.T) {
	rec := gateway.RawRecord{
		"Tipo Documento": "NF",
		"Credor":         "F-301",
		"Filial":         "12",
		"Vencimento":     "20/07/2025",
		"Valor":          "15.000,00",
		"Saldo":          "5.000,00",
		"Pagamento":      "18/07/2025",
	}

	inv, err := SiengeMapper{}.MapInvoice(rec)
	if err != nil {
		t.Fatalf("MapInvoice: %v", err)
	}
	if inv.DocumentType != "NF" || inv.CounterpartyCode != "F-301" {
		t.Fatalf("invoice=%+v want type=NF counterparty=F-301", inv)
	}
	if inv.BranchID != 12 {
		t.Fatalf("branch=%d want=12", inv.BranchID)
	}
	if inv.Amount.Cmp(decimal.NewFromInt(15000)) != 0 {
		t.Fatalf("amount=%s want=15000", inv.Amount)
	}
	if inv.Outstanding.Cmp(decimal.NewFromInt(5000)) != 0 {
		t.Fatalf("outstanding=%s want=5000", inv.Outstanding)
	}
	if !inv.Paid || inv.PaymentDate == nil {
		t.Fatal("invoice with payment date must report paid")
	}
}

func TestSiengeMapper_MalformedDevelopment(t *testing.T) {
	if _, err := (SiengeMapper{}).MapDevelopment(gateway.RawRecord{"name": "Tower A"}); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("err=%v want ErrMalformedRecord", err)
	}
}
