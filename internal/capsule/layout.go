package capsule

import "path/filepath"

// helixDirName is the reserved directory name a capsule root owns.
const helixDirName = ".helix"

// blocksDirName is the reserved directory, under helixDirName, holding
// one block file per tracked source path.
const blocksDirName = "blocks"

// dbFileName is the metadata database's filename under helixDirName.
const dbFileName = "metadata.db"

// selfExeName is excluded from the walk so a tool co-located with its
// own inputs never encrypts itself.
const selfExeName = "helix.exe"

// Layout resolves the well-known paths inside a capsule rooted at root.
type Layout struct {
	root string
}

// NewLayout returns a Layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{root: root}
}

// Root returns the capsule's root directory.
func (l Layout) Root() string { return l.root }

// HelixDir returns <root>/.helix.
func (l Layout) HelixDir() string { return filepath.Join(l.root, helixDirName) }

// BlocksDir returns <root>/.helix/blocks.
func (l Layout) BlocksDir() string { return filepath.Join(l.HelixDir(), blocksDirName) }

// DBPath returns <root>/.helix/metadata.db.
func (l Layout) DBPath() string { return filepath.Join(l.HelixDir(), dbFileName) }

// BlockPath returns the path of the block file for fileID.
func (l Layout) BlockPath(fileID string) string { return filepath.Join(l.BlocksDir(), fileID) }
