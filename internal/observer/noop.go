package observer

// NoopEncryptionObserver discards all events. Useful for tests and for
// library callers that do not need progress feedback.
type NoopEncryptionObserver struct{}

func (NoopEncryptionObserver) UpdateState(EncryptionState) {}
func (NoopEncryptionObserver) BytesProcessed(int)          {}
func (NoopEncryptionObserver) Failed(error)                {}
func (NoopEncryptionObserver) End(EncryptionEnd)           {}

// NoopEncryptionObserverFactory produces NoopEncryptionObserver values.
type NoopEncryptionObserverFactory struct{}

func (NoopEncryptionObserverFactory) NewObserver(string, int64) EncryptionObserver {
	return NoopEncryptionObserver{}
}

// NoopDecryptionObserver discards all events.
type NoopDecryptionObserver struct{}

func (NoopDecryptionObserver) InitSize(int64)            {}
func (NoopDecryptionObserver) UpdateState(DecryptionState) {}
func (NoopDecryptionObserver) BytesProcessed(int)        {}
func (NoopDecryptionObserver) Failed(error)              {}
func (NoopDecryptionObserver) End(DecryptionEnd)         {}

// NoopDecryptionObserverFactory produces NoopDecryptionObserver values.
type NoopDecryptionObserverFactory struct{}

func (NoopDecryptionObserverFactory) NewObserver(string) DecryptionObserver {
	return NoopDecryptionObserver{}
}
