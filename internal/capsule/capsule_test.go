package capsule_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/helix/internal/capsule"
	"github.com/prn-tf/helix/internal/observer"
)

type recordingEncryptionFactory struct {
	endsByPath map[string]observer.EncryptionEnd
}

func newRecordingEncryptionFactory() *recordingEncryptionFactory {
	return &recordingEncryptionFactory{endsByPath: map[string]observer.EncryptionEnd{}}
}

func (f *recordingEncryptionFactory) NewObserver(relativePath string, _ int64) observer.EncryptionObserver {
	return &capturingObserver{path: relativePath, factory: f}
}

type capturingObserver struct {
	path    string
	factory *recordingEncryptionFactory
}

func (o *capturingObserver) UpdateState(observer.EncryptionState) {}
func (o *capturingObserver) BytesProcessed(int)                  {}
func (o *capturingObserver) Failed(error)                        {}
func (o *capturingObserver) End(e observer.EncryptionEnd) {
	o.factory.endsByPath[o.path] = e
}

type recordingDecryptionFactory struct {
	endsByPath map[string]observer.DecryptionEnd
}

func newRecordingDecryptionFactory() *recordingDecryptionFactory {
	return &recordingDecryptionFactory{endsByPath: map[string]observer.DecryptionEnd{}}
}

func (f *recordingDecryptionFactory) NewObserver(relativePath string) observer.DecryptionObserver {
	return &capturingDecryptionObserver{path: relativePath, factory: f}
}

type capturingDecryptionObserver struct {
	path    string
	factory *recordingDecryptionFactory
}

func (o *capturingDecryptionObserver) InitSize(int64)                    {}
func (o *capturingDecryptionObserver) UpdateState(observer.DecryptionState) {}
func (o *capturingDecryptionObserver) BytesProcessed(int)                {}
func (o *capturingDecryptionObserver) Failed(error)                      {}
func (o *capturingDecryptionObserver) End(e observer.DecryptionEnd) {
	o.factory.endsByPath[o.path] = e
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func runEncrypt(t *testing.T, src, cap, passphrase string) *recordingEncryptionFactory {
	t.Helper()
	ctx := context.Background()
	enc, err := capsule.OpenEncryptor(ctx, cap, passphrase, testLogger())
	require.NoError(t, err)
	defer enc.Close()

	factory := newRecordingEncryptionFactory()
	require.NoError(t, enc.Run(ctx, src, factory, false))
	return factory
}

func runDecrypt(t *testing.T, cap, dst, passphrase string) (*recordingDecryptionFactory, error) {
	t.Helper()
	ctx := context.Background()
	dec, err := capsule.OpenDecryptor(ctx, cap, passphrase, testLogger())
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	factory := newRecordingDecryptionFactory()
	require.NoError(t, dec.Run(ctx, dst, factory))
	return factory, nil
}

func TestCreateSingleFileRoundTrip(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	cap := filepath.Join(root, "cap")
	out := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(src, 0o700))

	require.NoError(t, os.WriteFile(filepath.Join(src, "hello.txt"), []byte("Hello, capsule!\n"), 0o600))

	encEnds := runEncrypt(t, src, cap, "pw")
	require.Equal(t, observer.Done, encEnds.endsByPath["hello.txt"])

	blocksDir := filepath.Join(cap, ".helix", "blocks")
	entries, err := os.ReadDir(blocksDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.FileExists(t, filepath.Join(cap, ".helix", "metadata.db"))

	decEnds, err := runDecrypt(t, cap, out, "pw")
	require.NoError(t, err)
	require.Equal(t, observer.DecryptDone, decEnds.endsByPath["hello.txt"])

	got, err := os.ReadFile(filepath.Join(out, "hello.txt"))
	require.NoError(t, err)
	require.Equal(t, "Hello, capsule!\n", string(got))
}

func TestIncrementalNoOp(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	cap := filepath.Join(root, "cap")
	require.NoError(t, os.MkdirAll(src, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(src, "hello.txt"), []byte("Hello, capsule!\n"), 0o600))

	runEncrypt(t, src, cap, "pw")

	blockPath := firstBlockPath(t, cap)
	before, err := os.ReadFile(blockPath)
	require.NoError(t, err)

	ends := runEncrypt(t, src, cap, "pw")
	require.Equal(t, observer.Unchanged, ends.endsByPath["hello.txt"])

	after, err := os.ReadFile(blockPath)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestModifiedFileReEncrypts(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	cap := filepath.Join(root, "cap")
	out := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(src, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(src, "hello.txt"), []byte("Hello, capsule!\n"), 0o600))

	runEncrypt(t, src, cap, "pw")
	blockPath := firstBlockPath(t, cap)
	before, err := os.ReadFile(blockPath)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(src, "hello.txt"), []byte("Hello again.\n"), 0o600))
	ends := runEncrypt(t, src, cap, "pw")
	require.Equal(t, observer.Done, ends.endsByPath["hello.txt"])

	after, err := os.ReadFile(blockPath)
	require.NoError(t, err)
	require.NotEqual(t, before, after)

	_, err = runDecrypt(t, cap, out, "pw")
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(out, "hello.txt"))
	require.NoError(t, err)
	require.Equal(t, "Hello again.\n", string(got))
}

func TestWrongPassphraseFailsDecrypt(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	cap := filepath.Join(root, "cap")
	out := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(src, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(src, "hello.txt"), []byte("secret"), 0o600))

	runEncrypt(t, src, cap, "pw")

	_, err := runDecrypt(t, cap, out, "nope")
	require.Error(t, err)
	require.True(t, errors.Is(err, capsule.ErrPassphraseMismatch))

	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr))
}

func TestTamperedBlockFailsIntegrityCheck(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	cap := filepath.Join(root, "cap")
	out := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(src, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(src, "hello.txt"), []byte("secret payload"), 0o600))

	runEncrypt(t, src, cap, "pw")

	blockPath := firstBlockPath(t, cap)
	raw, err := os.ReadFile(blockPath)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(blockPath, raw, 0o600))

	ends, err := runDecrypt(t, cap, out, "pw")
	require.NoError(t, err)
	require.Equal(t, observer.MalformedBlock, ends.endsByPath["hello.txt"])

	_, statErr := os.Stat(filepath.Join(out, "hello.txt"))
	require.True(t, os.IsNotExist(statErr))
}

func TestHiddenAndHelixDirsExcludedFromWalk(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	cap := filepath.Join(root, "cap")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o700))
	require.NoError(t, os.MkdirAll(filepath.Join(src, ".hidden"), 0o700))
	require.NoError(t, os.MkdirAll(filepath.Join(src, ".helix", "blocks"), 0o700))

	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "keep.txt"), []byte("kept"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".dotfile"), []byte("skip"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".hidden", "skip.txt"), []byte("skip"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".helix", "blocks", "skip"), []byte("skip"), 0o600))

	ends := runEncrypt(t, src, cap, "pw")
	require.Len(t, ends.endsByPath, 1)
	_, tracked := ends.endsByPath[filepath.Join("nested", "keep.txt")]
	require.True(t, tracked)
}

func firstBlockPath(t *testing.T, cap string) string {
	t.Helper()
	blocksDir := filepath.Join(cap, ".helix", "blocks")
	entries, err := os.ReadDir(blocksDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return filepath.Join(blocksDir, entries[0].Name())
}
