// Package money formats integer-cent amounts and localizes order codes for
// display. Amounts are integers in the smallest currency unit end-to-end;
// conversion to a decimal string happens only here, at final render.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatPrice renders cents as a Turkish lira display string with dot
// thousands grouping, e.g. 123456 -> "1.234,56 ₺".
func FormatPrice(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s,%02d ₺", sign, groupThousands(cents/100), cents%100)
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

var statusLabels = map[string]string{
	"preparing":   "Hazırlanıyor",
	"on_delivery": "Yolda",
	"delivered":   "Teslim Edildi",
	"cancelled":   "İptal Edildi",
}

var paymentLabels = map[string]string{
	"cash":          "Nakit",
	"bank_transfer": "Havale / EFT",
}

// StatusLabel maps an order status code to its display label. Unknown codes
// are returned as-is so new statuses degrade readably.
func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// PaymentLabel maps a payment method code to its display label.
func PaymentLabel(method string) string {
	if l, ok := paymentLabels[method]; ok {
		return l
	}
	return method
}
