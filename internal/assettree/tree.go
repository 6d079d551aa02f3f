// Package assettree projects a flat asset list into a folder/file tree.
//
// Folders are never stored; they are derived from each asset's virtual
// relative path and rebuilt from scratch whenever the asset list changes.
package assettree

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Asset is one image under management
type Asset struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"project_id,omitempty"`
	Type      string         `json:"type,omitempty"`
	URI       string         `json:"uri"`
	MIMEType  string         `json:"mime_type,omitempty"`
	Width     *int           `json:"width,omitempty"`
	Height    *int           `json:"height,omitempty"`
	Checksum  string         `json:"checksum,omitempty"`
	Metadata  map[string]any `json:"metadata_json"`
}

// EntryKind distinguishes folder rows from file rows
type EntryKind string

const (
	KindFolder EntryKind = "folder"
	KindFile   EntryKind = "file"
)

// Entry is one row of the flattened tree. Folder rows carry the full folder
// path; file rows carry the filename in Path plus AssetID and FolderPath.
type Entry struct {
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	Depth      int       `json:"depth"`
	Kind       EntryKind `json:"kind"`
	Path       string    `json:"path"`
	AssetID    string    `json:"asset_id,omitempty"`
	FolderPath string    `json:"folder_path,omitempty"`
}

// Tree is the output of Build
type Tree struct {
	Entries         []Entry             `json:"entries"`
	OrderedAssetIDs []string            `json:"ordered_asset_ids"`
	FolderAssetIDs  map[string][]string `json:"folder_asset_ids"`
}

// RelativePath returns the virtual path used to place an asset: the
// relative_path metadata, else original_filename, else the URI.
func RelativePath(a Asset) string {
	if s, ok := a.Metadata["relative_path"].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	if s, ok := a.Metadata["original_filename"].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return a.URI
}

// splitPath normalizes backslashes and drops empty segments
func splitPath(path string) []string {
	parts := strings.Split(strings.ReplaceAll(path, `\`, "/"), "/")
	return slices.DeleteFunc(parts, func(s string) bool { return s == "" })
}

// FolderChain returns every ancestor prefix of path, shallowest first:
// "a/b/c" yields a, a/b, a/b/c.
func FolderChain(path string) []string {
	parts := splitPath(path)
	chain := make([]string, 0, len(parts))
	prefix := ""
	for _, part := range parts {
		if prefix == "" {
			prefix = part
		} else {
			prefix = prefix + "/" + part
		}
		chain = append(chain, prefix)
	}
	return chain
}

// CollectFolderPathsFromRelativePaths returns the sorted unique folder paths
// implied by a set of file paths.
func CollectFolderPathsFromRelativePaths(paths []string) []string {
	set := make(map[string]struct{})
	for _, p := range paths {
		parts := splitPath(p)
		if len(parts) < 2 {
			continue
		}
		for _, folder := range FolderChain(strings.Join(parts[:len(parts)-1], "/")) {
			set[folder] = struct{}{}
		}
	}
	out := slices.Collect(maps.Keys(set))
	c := newComparer()
	slices.SortFunc(out, c.compare)
	return out
}

// CollectFolderPaths returns the sorted unique folder paths of the assets
func CollectFolderPaths(assets []Asset) []string {
	paths := make([]string, len(assets))
	for i, a := range assets {
		paths[i] = RelativePath(a)
	}
	return CollectFolderPathsFromRelativePaths(paths)
}

// comparer orders names the way a user expects to read them.
// collate.Collator keeps internal buffers, so each Build gets its own.
type comparer struct {
	col *collate.Collator
}

func newComparer() *comparer {
	return &comparer{col: collate.New(language.English)}
}

// compare falls back to byte order when the collator calls two names equal
func (c *comparer) compare(a, b string) int {
	if r := c.col.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

type folderNode struct {
	name    string
	path    string
	folders map[string]*folderNode
	files   []fileNode
}

type fileNode struct {
	id   string
	name string
}

func newFolderNode(name, path string) *folderNode {
	return &folderNode{name: name, path: path, folders: make(map[string]*folderNode)}
}

// Build derives the tree. Entries are a depth-first pre-order walk with
// folders before files at each level. Output does not depend on input order.
func Build(assets []Asset) Tree {
	root := newFolderNode("", "")

	for _, a := range assets {
		rel := RelativePath(a)
		segments := splitPath(rel)
		filename := rel
		if len(segments) > 0 {
			filename = segments[len(segments)-1]
			segments = segments[:len(segments)-1]
		}

		cursor := root
		for _, part := range segments {
			next, ok := cursor.folders[part]
			if !ok {
				path := part
				if cursor.path != "" {
					path = cursor.path + "/" + part
				}
				next = newFolderNode(part, path)
				cursor.folders[part] = next
			}
			cursor = next
		}
		cursor.files = append(cursor.files, fileNode{id: a.ID, name: filename})
	}

	b := &builder{
		cmp: newComparer(),
		tree: Tree{
			Entries:         []Entry{},
			OrderedAssetIDs: []string{},
			FolderAssetIDs:  make(map[string][]string),
		},
	}
	b.visit(root, 0)
	return b.tree
}

type builder struct {
	cmp  *comparer
	tree Tree
}

func (b *builder) visit(node *folderNode, depth int) []string {
	subtree := []string{}

	folders := slices.Collect(maps.Values(node.folders))
	slices.SortFunc(folders, func(x, y *folderNode) int {
		return b.cmp.compare(x.name, y.name)
	})
	for _, folder := range folders {
		b.tree.Entries = append(b.tree.Entries, Entry{
			Key:   "folder:" + folder.path,
			Name:  folder.name,
			Depth: depth,
			Kind:  KindFolder,
			Path:  folder.path,
		})
		children := b.visit(folder, depth+1)
		b.tree.FolderAssetIDs[folder.path] = children
		subtree = append(subtree, children...)
	}

	files := slices.Clone(node.files)
	slices.SortFunc(files, func(x, y fileNode) int {
		if r := b.cmp.col.CompareString(x.name, y.name); r != 0 {
			return r
		}
		return cmp.Or(strings.Compare(x.id, y.id), strings.Compare(x.name, y.name))
	})
	for _, file := range files {
		b.tree.OrderedAssetIDs = append(b.tree.OrderedAssetIDs, file.id)
		subtree = append(subtree, file.id)
		b.tree.Entries = append(b.tree.Entries, Entry{
			Key:        "file:" + file.id,
			Name:       file.name,
			Depth:      depth,
			Kind:       KindFile,
			Path:       file.name,
			AssetID:    file.id,
			FolderPath: node.path,
		})
	}

	return subtree
}

// AssetsInScope returns the asset IDs in tree order under folder, or every
// asset when folder is empty. Unknown folders have no assets.
func (t Tree) AssetsInScope(folder string) []string {
	if folder == "" {
		return slices.Clone(t.OrderedAssetIDs)
	}
	return slices.Clone(t.FolderAssetIDs[folder])
}

// IndexOf returns the navigation index of assetID, or -1
func (t Tree) IndexOf(assetID string) int {
	return slices.Index(t.OrderedAssetIDs, assetID)
}

// HasFolder reports whether path is a derived folder of the tree
func (t Tree) HasFolder(path string) bool {
	_, ok := t.FolderAssetIDs[path]
	return ok
}
