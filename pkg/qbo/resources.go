package qbo

import (
	"fmt"
	"strings"
)

// Accounting entities served by the v3 API.
const (
	ResourceAccount       = "Account"
	ResourceAttachable    = "Attachable"
	ResourceBill          = "Bill"
	ResourceBillPayment   = "BillPayment"
	ResourceClass         = "Class"
	ResourceCompanyInfo   = "CompanyInfo"
	ResourceCreditMemo    = "CreditMemo"
	ResourceCustomer      = "Customer"
	ResourceDepartment    = "Department"
	ResourceDeposit       = "Deposit"
	ResourceEmployee      = "Employee"
	ResourceEstimate      = "Estimate"
	ResourceInvoice       = "Invoice"
	ResourceItem          = "Item"
	ResourceJournalEntry  = "JournalEntry"
	ResourcePayment       = "Payment"
	ResourcePaymentMethod = "PaymentMethod"
	ResourcePreferences   = "Preferences"
	ResourcePurchase      = "Purchase"
	ResourcePurchaseOrder = "PurchaseOrder"
	ResourceSalesReceipt  = "SalesReceipt"
	ResourceTaxCode       = "TaxCode"
	ResourceTaxRate       = "TaxRate"
	ResourceTerm          = "Term"
	ResourceTimeActivity  = "TimeActivity"
	ResourceVendor        = "Vendor"
	ResourceVendorCredit  = "VendorCredit"
)

var accountingResources = []string{
	ResourceAccount, ResourceAttachable, ResourceBill, ResourceBillPayment,
	ResourceClass, ResourceCompanyInfo, ResourceCreditMemo, ResourceCustomer,
	ResourceDepartment, ResourceDeposit, ResourceEmployee, ResourceEstimate,
	ResourceInvoice, ResourceItem, ResourceJournalEntry, ResourcePayment,
	ResourcePaymentMethod, ResourcePreferences, ResourcePurchase,
	ResourcePurchaseOrder, ResourceSalesReceipt, ResourceTaxCode,
	ResourceTaxRate, ResourceTerm, ResourceTimeActivity, ResourceVendor,
	ResourceVendorCredit,
}

var resourcesByLowerName = func() map[string]string {
	index := make(map[string]string, len(accountingResources))
	for _, name := range accountingResources {
		index[strings.ToLower(name)] = name
	}

	return index
}()

// Resources returns the names of all known accounting entities.
func Resources() []string {
	return append([]string(nil), accountingResources...)
}

// CanonicalResource resolves a resource name case-insensitively to its
// canonical form, e.g. "customer" to "Customer".
func CanonicalResource(name string) (string, error) {
	canonical, ok := resourcesByLowerName[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidResource, name)
	}

	return canonical, nil
}
