// Command helix is a passphrase-protected, content-addressed encrypted
// backup tool: it mirrors a source directory into a capsule of
// independently authenticated blocks, and restores a capsule back into
// plaintext.
package main

import "os"

func main() {
	os.Exit(run())
}
