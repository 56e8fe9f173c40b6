package transform

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/gateway"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

// SiengeMapper adapts Sienge's JSON API records and the Portuguese-headed
// CSV rows of its accounts-payable report export.
type SiengeMapper struct{}

func (SiengeMapper) Source() string { return gateway.SourceSienge }

func (SiengeMapper) MapDevelopment(rec gateway.RawRecord) (store.Development, error) {
	extID := pick(rec, "id", "enterpriseId")
	if extID == "" {
		return store.Development{}, malformed("enterprise id")
	}
	return store.Development{
		ExternalID: extID,
		Source:     gateway.SourceSienge,
		Name:       pick(rec, "name", "commercialName"),
	}, nil
}

func (SiengeMapper) MapContract(rec gateway.RawRecord) (store.Contract, error) {
	code := pick(rec, "number", "contractNumber", "id")
	if code == "" {
		return store.Contract{}, malformed("contract number")
	}

	signedValue, ok := ParseDecimal(pick(rec, "value", "totalSellingValue"))
	if !ok {
		return store.Contract{}, malformed("contract value")
	}

	contract := store.Contract{
		CodContract:  code,
		VariantKey:   pickOrDefault(rec, "0", "version", "revision"),
		Source:       gateway.SourceSienge,
		CustomerCode: pick(rec, "customerId", "customer_id"),
		Status:       siengeContractStatus(pick(rec, "situation", "status")),
		SignedValue:  signedValue,
		TermMonths:   ParseInt(pick(rec, "paymentTermMonths", "termMonths")),
	}

	if signed := ParseDate(pick(rec, "contractDate", "issueDate")); !signed.IsZero() {
		contract.SigningDate = &signed
	}
	return contract, nil
}

func (SiengeMapper) MapInstallment(rec gateway.RawRecord) (receivable.Installment, error) {
	due := ParseDate(pick(rec, "dueDate", "due_date"))
	if due.IsZero() {
		return receivable.Installment{}, malformed("installment due date")
	}
	original, ok := ParseDecimal(pick(rec, "originalValue", "installmentValue"))
	if !ok {
		return receivable.Installment{}, malformed("installment value")
	}

	paid, _ := ParseDecimal(pick(rec, "paidValue", "receivedValue"))
	balance, hasBalance := ParseDecimal(pick(rec, "balance", "balanceValue"))
	if !hasBalance {
		balance = original.Sub(paid)
	}

	seq, total := ParseSequence(pick(rec, "installmentNumber", "number"))

	inst := receivable.Installment{
		ContractKey:      pick(rec, "contractId", "billReceivableId"),
		DueDate:          due,
		OriginalValue:    original,
		PaidValue:        paid,
		Balance:          balance,
		OriginType:       siengeOrigin(pick(rec, "originId", "origin")),
		Status:           siengeInstallmentStatus(pick(rec, "statusId", "status")),
		SettlementStatus: siengeSettlement(rec),
		Kind:             siengeKind(pick(rec, "conditionType", "paymentConditionType")),
		Sequence:         seq,
		SequenceTotal:    total,
	}

	if payment := ParseDate(pick(rec, "paymentDate", "receiptDate")); !payment.IsZero() {
		inst.PaymentDate = &payment
	}
	return inst, nil
}

// MapInvoice consumes one row of the accounts-payable CSV report.
func (SiengeMapper) MapInvoice(rec gateway.RawRecord) (receivable.Invoice, error) {
	due := ParseDate(pick(rec, "Vencimento", "dueDate"))
	if due.IsZero() {
		return receivable.Invoice{}, malformed("invoice due date")
	}
	amount, ok := ParseDecimal(pick(rec, "Valor", "amount"))
	if !ok {
		return receivable.Invoice{}, malformed("invoice amount")
	}

	outstanding, hasOutstanding := ParseDecimal(pick(rec, "Saldo", "balance"))
	if !hasOutstanding {
		outstanding = decimal.Zero
	}

	inv := receivable.Invoice{
		DocumentType:     pick(rec, "Tipo Documento", "documentType"),
		CounterpartyCode: pick(rec, "Credor", "creditorId"),
		BranchID:         ParseInt64(pick(rec, "Filial", "companyId")),
		DueDate:          due,
		Amount:           amount,
		Outstanding:      outstanding,
	}

	if payment := ParseDate(pick(rec, "Pagamento", "paymentDate")); !payment.IsZero() {
		inv.PaymentDate = &payment
		inv.Paid = true
	}
	return inv, nil
}

func siengeContractStatus(val string) string {
	switch strings.ToLower(val) {
	case "0", "sold", "active", "emitido":
		return store.ContractStatusActive
	case "2", "canceled", "cancelled", "rescinded":
		return "canceled"
	default:
		return "inactive"
	}
}

func siengeInstallmentStatus(val string) string {
	switch strings.ToLower(val) {
	case "0", "active", "open", "paid":
		return receivable.StatusActive
	case "2", "canceled", "cancelled":
		return receivable.StatusCanceled
	default:
		return receivable.StatusInactive
	}
}

func siengeOrigin(val string) string {
	switch strings.ToLower(val) {
	case "1", "ds", "direct-sale", "direct_sale":
		return receivable.OriginDirectSale
	case "2", "at", "price-table", "amortization":
		return receivable.OriginAmortizationTable
	case "3", "rn", "renegotiation":
		return receivable.OriginRenegotiation
	default:
		return receivable.OriginOther
	}
}

func siengeSettlement(rec gateway.RawRecord) string {
	switch strings.ToLower(pick(rec, "receiptStatus", "settlementStatus")) {
	case "paid":
		return receivable.SettlementPaid
	case "settled":
		return receivable.SettlementSettled
	}
	if pick(rec, "paymentDate", "receiptDate") != "" {
		return receivable.SettlementPaid
	}
	return receivable.SettlementOpen
}

func siengeKind(val string) string {
	switch strings.ToLower(val) {
	case "pm", "monthly", "regular":
		return receivable.KindRegular
	case "sg", "sign", "downpayment", "down_payment":
		return receivable.KindDownPayment
	case "bl", "balloon", "intermediate":
		return receivable.KindBalloon
	default:
		return receivable.KindOther
	}
}
