package badger

import (
	"encoding/binary"

	"github.com/poiesic/scholia/core"
)

// Key prefixes for different data types.
// Every prefix ends with ':' so that no prefix is a prefix of another.
const (
	documentPrefix         = "docrec:"
	documentOwnerPrefix    = "docown:"
	documentNotebookPrefix = "docnbk:"
	chunkPrefix            = "chkrec:"
	chunkDocumentPrefix    = "chkdoc:"
	chunkOwnerPrefix       = "chkown:"
	knowledgePrefix        = "knwrec:"
	knowledgeDocPrefix     = "knwdoc:"
	notebookPrefix         = "nbkrec:"
	notebookOwnerPrefix    = "nbkown:"
	notebookDocPrefix      = "nbkdoc:"
	contentPrefix          = "gcnrec:"
	contentNotebookPrefix  = "gcnnbk:"
	messagePrefix          = "msgrec:"
	messageNotebookPrefix  = "msgnbk:"
	checkpointPrefix       = "chkpt:"

	documentIDSeq  = "seq:document"
	chunkIDSeq     = "seq:chunk"
	knowledgeIDSeq = "seq:knowledge"
	notebookIDSeq  = "seq:notebook"
	contentIDSeq   = "seq:content"
	messageIDSeq   = "seq:message"
)

// ownerSeparator terminates the variable-length owner segment of index keys.
const ownerSeparator = 0x00

// makeKey concatenates a prefix with big-endian encoded IDs.
// Format: prefix id1 id2 ...
// Written in BigEndian order so lexicographic sort matches numeric order.
func makeKey(prefix string, ids ...core.ID) []byte {
	buf := make([]byte, len(prefix)+8*len(ids))
	offset := copy(buf, prefix)
	for _, id := range ids {
		binary.BigEndian.PutUint64(buf[offset:], uint64(id))
		offset += 8
	}
	return buf
}

// makeOwnerKey generates an owner index key.
// Format: prefix owner 0x00 id
func makeOwnerKey(prefix string, owner core.OwnerID, id core.ID) []byte {
	partial := makePartialOwnerKey(prefix, owner)
	buf := make([]byte, len(partial)+8)
	offset := copy(buf, partial)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialOwnerKey generates the scan prefix for an owner index.
// Format: prefix owner 0x00
func makePartialOwnerKey(prefix string, owner core.OwnerID) []byte {
	buf := make([]byte, 0, len(prefix)+len(owner)+1)
	buf = append(buf, prefix...)
	buf = append(buf, owner...)
	return append(buf, ownerSeparator)
}

// trailingID decodes the ID stored in the last 8 bytes of an index key.
func trailingID(key []byte) core.ID {
	if len(key) < 8 {
		return 0
	}
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makeCheckpointKey generates a key for processor checkpoints.
func makeCheckpointKey(processorType string) []byte {
	return []byte(checkpointPrefix + processorType)
}
