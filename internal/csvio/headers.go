// Package csvio reads and writes customer spreadsheets: UTF-8 CSV with the
// Japanese headers used by the export, and the same layout as XLSX.
package csvio

import (
	"strings"

	"golang.org/x/text/width"
)

// Import field keys. They match the JSON names used by validate.CustomerFields.
const (
	fieldCustomerType      = "customer_type"
	fieldCompanyName       = "company_name"
	fieldName              = "name"
	fieldNameKana          = "name_kana"
	fieldClass             = "class"
	fieldBirthDate         = "birth_date"
	fieldPostalCode        = "postal_code"
	fieldPrefecture        = "prefecture"
	fieldCity              = "city"
	fieldAddress           = "address"
	fieldPhone             = "phone"
	fieldEmail             = "email"
	fieldContractStartDate = "contract_start_date"
	fieldInvoiceMethod     = "invoice_method"
	fieldPaymentTerms      = "payment_terms"
	fieldMemo              = "memo"
	fieldTags              = "tags"
)

// requiredFields must all be present in the header row.
var requiredFields = []string{fieldName, fieldCustomerType}

// ExportHeaders is the fixed column order of every export.
var ExportHeaders = []string{
	"ID", "顧客種別", "会社名", "氏名", "氏名（カナ）", "分類", "生年月日",
	"郵便番号", "都道府県", "市区町村", "住所", "電話番号", "メールアドレス",
	"契約開始日", "請求方法", "支払条件", "タグ", "備考", "作成日時", "更新日時",
}

// headerAliases maps a folded, lower-cased header to its field key.
// Export-only columns (ID, timestamps) are deliberately absent so a
// re-imported export ignores them.
var headerAliases = buildAliases(map[string][]string{
	fieldCustomerType:      {"顧客種別", "種別", "顧客区分"},
	fieldCompanyName:       {"会社名", "法人名", "企業名"},
	fieldName:              {"氏名", "名前", "担当者名"},
	fieldNameKana:          {"氏名（カナ）", "氏名(カナ)", "フリガナ", "カナ"},
	fieldClass:             {"分類", "区分"},
	fieldBirthDate:         {"生年月日"},
	fieldPostalCode:        {"郵便番号"},
	fieldPrefecture:        {"都道府県"},
	fieldCity:              {"市区町村"},
	fieldAddress:           {"住所", "番地"},
	fieldPhone:             {"電話番号", "電話"},
	fieldEmail:             {"メールアドレス", "メール", "e-mail"},
	fieldContractStartDate: {"契約開始日"},
	fieldInvoiceMethod:     {"請求方法", "請求書送付方法"},
	fieldPaymentTerms:      {"支払条件", "支払いサイト"},
	fieldMemo:              {"備考", "メモ"},
	fieldTags:              {"タグ"},
})

func buildAliases(src map[string][]string) map[string]string {
	out := make(map[string]string)
	for field, names := range src {
		out[field] = field
		for _, n := range names {
			out[normalizeHeader(n)] = field
		}
	}
	return out
}

// normalizeHeader folds full-width ASCII and half-width katakana, trims
// whitespace and lower-cases, so "Ｅｍａｉｌ " and "email" collide.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(width.Fold.String(h)))
}

// fieldForHeader returns the field key for a header cell, or "" if unknown.
func fieldForHeader(h string) string {
	return headerAliases[normalizeHeader(h)]
}
