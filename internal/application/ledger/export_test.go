package ledger

import "time"

// SetClock fija el reloj del motor en tests.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }
