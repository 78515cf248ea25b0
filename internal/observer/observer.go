// Package observer defines the progress-reporting contract the capsule
// core consumes from its caller. The core never writes to a terminal or
// any other surface directly; it only calls back through these
// interfaces, which the CLI shell implements.
package observer

// EncryptionState marks where a single file's encryption currently
// stands.
type EncryptionState int

const (
	// PlainFileCheck is emitted while hashing the source file to decide
	// whether it has changed since the last run.
	PlainFileCheck EncryptionState = iota
	// EncryptedBlockCheck is emitted while verifying an existing block's
	// integrity before deciding whether re-encryption is needed.
	EncryptedBlockCheck
)

func (s EncryptionState) String() string {
	switch s {
	case PlainFileCheck:
		return "PlainFileCheck"
	case EncryptedBlockCheck:
		return "EncryptedBlockCheck"
	default:
		return "Unknown"
	}
}

// EncryptionEnd marks how a single file's encryption concluded.
type EncryptionEnd int

const (
	// Done means the file was (re-)encrypted successfully.
	Done EncryptionEnd = iota
	// Unchanged means the file matched its prior plaintext and block
	// hash, so no work was needed.
	Unchanged
)

func (e EncryptionEnd) String() string {
	switch e {
	case Done:
		return "Done"
	case Unchanged:
		return "Unchanged"
	default:
		return "Unknown"
	}
}

// EncryptionObserver receives progress for one file's encryption.
// Implementations must be safe to use from a single goroutine; the
// driver calls these methods sequentially for a given file.
type EncryptionObserver interface {
	UpdateState(state EncryptionState)
	BytesProcessed(n int)
	Failed(err error)
	End(end EncryptionEnd)
}

// EncryptionObserverFactory creates a per-file EncryptionObserver. size
// is the plaintext file's byte length, known up front.
type EncryptionObserverFactory interface {
	NewObserver(relativePath string, size int64) EncryptionObserver
}

// DecryptionEnd marks how a single file's decryption concluded.
type DecryptionEnd int

const (
	// DecryptDone means the file was restored successfully.
	DecryptDone DecryptionEnd = iota
	// MalformedBlock means the stored block failed its integrity check;
	// no destination file is produced.
	MalformedBlock
	// BlockNotFound means the metadata row references a block file that
	// does not exist on disk.
	BlockNotFound
)

func (e DecryptionEnd) String() string {
	switch e {
	case DecryptDone:
		return "Done"
	case MalformedBlock:
		return "MalformedBlock"
	case BlockNotFound:
		return "BlockNotFound"
	default:
		return "Unknown"
	}
}

// DecryptionState marks where a single file's decryption currently
// stands. Today the driver only reaches EncryptedBlockCheck, but the
// type mirrors EncryptionState for symmetry and future states.
type DecryptionState int

const (
	// DecryptBlockCheck is emitted while verifying a stored block's
	// integrity before decrypting it.
	DecryptBlockCheck DecryptionState = iota
)

func (s DecryptionState) String() string {
	switch s {
	case DecryptBlockCheck:
		return "EncryptedBlockCheck"
	default:
		return "Unknown"
	}
}

// DecryptionObserver receives progress for one file's decryption. Unlike
// EncryptionObserver, the size is not known at construction time: the
// driver reports the encrypted block file's byte length via InitSize
// once the block's integrity has been checked.
type DecryptionObserver interface {
	InitSize(n int64)
	UpdateState(state DecryptionState)
	BytesProcessed(n int)
	Failed(err error)
	End(end DecryptionEnd)
}

// DecryptionObserverFactory creates a per-file DecryptionObserver.
type DecryptionObserverFactory interface {
	NewObserver(relativePath string) DecryptionObserver
}
