package common

import (
	"fmt"
	"strings"
	"time"

	"remit-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100
)

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintSeparatorNewline prints a separator with a newline before it
func PrintSeparatorNewline(char string, width int) {
	fmt.Println("\n" + strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// BoxDetailPrefix returns the prefix for detail lines under list items
func BoxDetailPrefix(isLast bool) string {
	if isLast {
		return "   "
	}
	return "│  "
}

// FormatMoney renders an amount with two decimals followed by its currency
func FormatMoney(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(2) + " " + currency
}

// PrintReceipt prints a transaction receipt in the box layout
func PrintReceipt(r models.Receipt) {
	PrintHeader("RECEIPT "+r.ReferenceNumber, DefaultWidth)

	rows := [][2]string{
		{"Status", strings.ToUpper(r.Status)},
		{"Amount", FormatMoney(r.Amount, r.Currency)},
		{"Fee", FormatMoney(r.Fee, r.Currency)},
		{"Total paid", FormatMoney(r.TotalPaid, r.Currency)},
	}
	if r.RecipientName != "" {
		rows = append([][2]string{{"Recipient", r.RecipientName}}, rows...)
	}
	if r.RecipientCurrency != r.Currency {
		rows = append(rows,
			[2]string{"Exchange rate", fmt.Sprintf("1 %s = %s %s", r.Currency, r.ExchangeRate.String(), r.RecipientCurrency)},
			[2]string{"Recipient gets", FormatMoney(r.ConvertedAmount, r.RecipientCurrency)})
	}
	if r.Category != "" {
		rows = append(rows, [2]string{"Category", r.Category})
	}
	if r.Note != "" {
		rows = append(rows, [2]string{"Note", r.Note})
	}
	rows = append(rows, [2]string{"Created", r.CreatedAt.Format(time.RFC1123)})
	if !r.SettledAt.IsZero() {
		rows = append(rows, [2]string{"Settled", r.SettledAt.Format(time.RFC1123)})
	}

	for i, row := range rows {
		fmt.Printf("%s%-15s %s\n", BoxPrefix(i == len(rows)-1), row[0]+":", row[1])
	}
}
