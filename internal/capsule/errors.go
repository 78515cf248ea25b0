package capsule

import (
	"errors"
	"fmt"
)

// Code names a class of capsule error.
type Code int

const (
	// CodeInvalidCapsule means the target directory does not look like a
	// valid capsule. Fatal to the operation.
	CodeInvalidCapsule Code = iota
	// CodePassphraseMismatch means the supplied passphrase's digest does
	// not match the one recorded at capsule creation. Fatal.
	CodePassphraseMismatch
	// CodeMalformedCapsule means an AEAD authentication failure occurred
	// during key unwrap or metadata parsing — data corruption, not a
	// user error. Fatal to the setup step that raised it.
	CodeMalformedCapsule
	// CodeMalformedBlock means a stored block failed its integrity
	// check. Per-file; reported through the observer, never returned.
	CodeMalformedBlock
	// CodeBlockNotFound means a tracked file's block is missing from
	// disk. Per-file; reported through the observer, never returned.
	CodeBlockNotFound
	// CodeIOFailure wraps an underlying filesystem or database error.
	// Generally fatal.
	CodeIOFailure
)

func (c Code) String() string {
	switch c {
	case CodeInvalidCapsule:
		return "InvalidHelixCapsule"
	case CodePassphraseMismatch:
		return "PassphraseMismatch"
	case CodeMalformedCapsule:
		return "MalformedCapsule"
	case CodeMalformedBlock:
		return "MalformedBlock"
	case CodeBlockNotFound:
		return "BlockNotFound"
	case CodeIOFailure:
		return "IOFailure"
	default:
		return "Unknown"
	}
}

// DetailedCode narrows CodeInvalidCapsule to the specific piece of a
// capsule's on-disk layout that was found missing during setup.
type DetailedCode int

const (
	NoHelixFolder DetailedCode = iota
	NoDBFile
	NoBlocksFolder
	NoMasterKey
)

func (c DetailedCode) String() string {
	switch c {
	case NoHelixFolder:
		return "NoHelixFolder"
	case NoDBFile:
		return "NoDBFile"
	case NoBlocksFolder:
		return "NoBlocksFolder"
	case NoMasterKey:
		return "NoMasterKey"
	default:
		return "Unknown"
	}
}

// CapsuleError is the user-visible shape of a fatal invalid-capsule
// setup error: a code, an optional detailed code narrowing it, and a
// message. A passphrase mismatch and corrupt master-key metadata are
// returned as the ErrPassphraseMismatch and ErrMalformedCapsule
// sentinels instead. The CLI shell maps Code to an exit code; Error()
// renders both codes and the message.
type CapsuleError struct {
	Code         Code
	DetailedCode DetailedCode
	Message      string
}

func (e *CapsuleError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("capsule: %s (%s): %s", e.Code, e.DetailedCode, e.Message)
	}
	return fmt.Sprintf("capsule: %s (%s)", e.Code, e.DetailedCode)
}

// invalidCapsule builds a CapsuleError for a missing layout piece.
func invalidCapsule(detail DetailedCode) *CapsuleError {
	return &CapsuleError{Code: CodeInvalidCapsule, DetailedCode: detail}
}

// ErrPassphraseMismatch is surfaced when a supplied passphrase's digest
// does not match the one recorded at capsule creation. Fatal.
var ErrPassphraseMismatch = errors.New("capsule: passphrase does not match")

// ErrMalformedCapsule is surfaced when a key-unwrap or metadata parse
// fails authentication — data corruption, not a user error. Fatal when
// the master key fails to unwrap during setup; a file's data key or
// path that fails during decryption is reported through that file's
// observer and the run continues.
var ErrMalformedCapsule = errors.New("capsule: capsule metadata is corrupt")
