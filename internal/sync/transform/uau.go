package transform

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/gateway"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

// UAUMapper adapts UAU's Portuguese, mostly-coded payloads. UAU reports
// statuses and origins as single-letter or numeric codes depending on the
// endpoint version, so every lookup tolerates both spellings.
type UAUMapper struct{}

func (UAUMapper) Source() string { return gateway.SourceUAU }

func (UAUMapper) MapDevelopment(rec gateway.RawRecord) (store.Development, error) {
	extID := pick(rec, "cod_empr", "codigo_empreendimento", "codigo")
	if extID == "" {
		return store.Development{}, malformed("development code")
	}
	return store.Development{
		ExternalID: extID,
		Source:     gateway.SourceUAU,
		Name:       pick(rec, "descr_empr", "descricao", "nome"),
	}, nil
}

func (UAUMapper) MapContract(rec gateway.RawRecord) (store.Contract, error) {
	code := pick(rec, "num_venda", "numero_venda")
	if code == "" {
		return store.Contract{}, malformed("contract code")
	}

	signedValue, ok := ParseDecimal(pick(rec, "valor_venda", "valor_contrato"))
	if !ok {
		return store.Contract{}, malformed("contract value")
	}

	contract := store.Contract{
		CodContract:  code,
		VariantKey:   pickOrDefault(rec, "0", "num_revenda", "revenda"),
		Source:       gateway.SourceUAU,
		CustomerCode: pick(rec, "cod_pessoa", "codigo_cliente"),
		Status:       uauContractStatus(pick(rec, "status_venda", "situacao")),
		SignedValue:  signedValue,
		TermMonths:   ParseInt(pick(rec, "prazo_meses", "prazo")),
	}

	if signed := ParseDate(pick(rec, "data_venda", "data_contrato")); !signed.IsZero() {
		contract.SigningDate = &signed
	}
	return contract, nil
}

func (UAUMapper) MapInstallment(rec gateway.RawRecord) (receivable.Installment, error) {
	due := ParseDate(pick(rec, "data_vencimento", "vencimento"))
	if due.IsZero() {
		return receivable.Installment{}, malformed("installment due date")
	}
	original, ok := ParseDecimal(pick(rec, "valor_parcela", "valor_original"))
	if !ok {
		return receivable.Installment{}, malformed("installment value")
	}

	paid, _ := ParseDecimal(pick(rec, "valor_pago"))
	balance, hasBalance := ParseDecimal(pick(rec, "saldo_parcela", "saldo"))
	if !hasBalance {
		balance = original.Sub(paid)
	}

	seq, total := ParseSequence(pick(rec, "numero_parcela", "parcela"))

	inst := receivable.Installment{
		ContractKey:      pick(rec, "num_venda", "numero_venda"),
		DueDate:          due,
		OriginalValue:    original,
		PaidValue:        paid,
		Balance:          balance,
		OriginType:       uauOrigin(pick(rec, "tipo_origem", "origem")),
		Status:           uauInstallmentStatus(pick(rec, "status_parcela", "status")),
		SettlementStatus: uauSettlement(rec),
		Kind:             uauKind(pick(rec, "tipo_parcela", "tipo")),
		Sequence:         seq,
		SequenceTotal:    total,
	}

	if payment := ParseDate(pick(rec, "data_pagamento", "pagamento")); !payment.IsZero() {
		inst.PaymentDate = &payment
	}
	return inst, nil
}

func (UAUMapper) MapInvoice(rec gateway.RawRecord) (receivable.Invoice, error) {
	due := ParseDate(pick(rec, "data_vencimento", "vencimento"))
	if due.IsZero() {
		return receivable.Invoice{}, malformed("invoice due date")
	}
	amount, ok := ParseDecimal(pick(rec, "valor_documento", "valor"))
	if !ok {
		return receivable.Invoice{}, malformed("invoice amount")
	}

	outstanding, hasOutstanding := ParseDecimal(pick(rec, "saldo"))
	if !hasOutstanding {
		outstanding = decimal.Zero
	}

	inv := receivable.Invoice{
		DocumentType:     pick(rec, "tipo_documento", "tipo_doc"),
		CounterpartyCode: pick(rec, "cod_pessoa", "cod_credor"),
		BranchID:         ParseInt64(pick(rec, "cod_filial", "filial")),
		DueDate:          due,
		Amount:           amount,
		Outstanding:      outstanding,
	}

	if payment := ParseDate(pick(rec, "data_pagamento", "pagamento")); !payment.IsZero() {
		inv.PaymentDate = &payment
		inv.Paid = true
	}
	return inv, nil
}

func uauContractStatus(val string) string {
	switch strings.ToLower(val) {
	case "0", "a", "ativo", "ativa", "quitado":
		return store.ContractStatusActive
	case "2", "c", "cancelado", "cancelada", "distratado":
		return "canceled"
	default:
		return "inactive"
	}
}

func uauInstallmentStatus(val string) string {
	switch strings.ToLower(val) {
	case "0", "a", "ativo", "ativa":
		return receivable.StatusActive
	case "2", "c", "cancelado", "cancelada":
		return receivable.StatusCanceled
	default:
		return receivable.StatusInactive
	}
}

func uauOrigin(val string) string {
	switch strings.ToLower(val) {
	case "v", "vd", "venda direta":
		return receivable.OriginDirectSale
	case "t", "tp", "tabela", "tabela price":
		return receivable.OriginAmortizationTable
	case "r", "renegociacao":
		return receivable.OriginRenegotiation
	default:
		return receivable.OriginOther
	}
}

func uauSettlement(rec gateway.RawRecord) string {
	switch strings.ToLower(pick(rec, "situacao_pagamento", "situacao")) {
	case "pago", "paga":
		return receivable.SettlementPaid
	case "quitado", "quitada", "liquidado":
		return receivable.SettlementSettled
	}
	// Older endpoint versions omit the settlement field; a payment date is
	// the only signal left.
	if pick(rec, "data_pagamento", "pagamento") != "" {
		return receivable.SettlementPaid
	}
	return receivable.SettlementOpen
}

func uauKind(val string) string {
	switch strings.ToLower(val) {
	case "p", "parcela", "mensal":
		return receivable.KindRegular
	case "e", "entrada", "sinal":
		return receivable.KindDownPayment
	case "b", "balao", "intermediaria":
		return receivable.KindBalloon
	default:
		return receivable.KindOther
	}
}

func pickOrDefault(rec gateway.RawRecord, fallback string, keys ...string) string {
	if val := pick(rec, keys...); val != "" {
		return val
	}
	return fallback
}
