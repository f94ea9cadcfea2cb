package entity

import "time"

// InvoiceSequence contador atómico de numeración por tipo de transacción y día calendario.
type InvoiceSequence struct {
	Kind      string
	Day       time.Time // medianoche en la zona horaria configurada
	LastValue int
}
