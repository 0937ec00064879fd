// Package hierarchy groups provinces into a merge forest: several detected
// provinces can be treated as one logical province by hanging them under a
// common root.
//
// What:
//
//   - RootParentOf walks Parent links to the root of a tree.
//   - Merge hangs the root of one tree under the root of another and copies
//     the new root's state to the absorbed subtree.
//   - Unmerge detaches one province. A child is removed from its parent and
//     its own children move up to that parent; a root hands its children to
//     the child with the smallest ID, which becomes the new root.
//   - MergedGroup lists every province connected to one ID through parent
//     and child links, breadth first.
//   - Dump renders a tree for diagnostics, at most MaxDumpDepth levels deep.
//
// Province IDs never change; only Parent, Children and State are edited.
//
// Errors:
//
//   - ErrNotFound: an ID, or an ID referenced by a link, is not in the forest.
//   - ErrSameProvince: Merge was given one ID twice.
//   - ErrAlreadyMerged: both IDs already share a root.
//   - ErrUnexpected: a province is its own parent or the links form a cycle.
//
// Failed operations leave the forest unchanged.
//
// Concurrency: a Forest is guarded by a sync.RWMutex. Provinces returned by
// Get are shared; do not edit their links directly.
package hierarchy
