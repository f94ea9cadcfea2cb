package ledger

import (
	"fmt"
	"time"
)

// MaxDailySequence último consecutivo representable con 4 dígitos.
const MaxDailySequence = 9999

// FormatInvoiceNumber construye PREFIX/YYYYMMDD/SSSS. day debe venir ya convertido
// a la zona horaria de numeración.
func FormatInvoiceNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s/%s/%04d", prefix, day.Format("20060102"), seq)
}

// DayStart medianoche del día de t en loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}
