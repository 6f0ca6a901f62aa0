package digest

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/wippyai/merkleized-metadata/scale"
)

// Hash is a 32-byte BLAKE3 digest. Every hash in the merkleized
// metadata scheme (type leaves, tree nodes, the final metadata hash) is
// this size.
type Hash [32]byte

// String returns the lowercase hex encoding without a 0x prefix.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func sum(data []byte) Hash {
	return blake3.Sum256(data)
}

// ExtraInfo is the chain information mixed into the metadata digest
// alongside the type tree root.
type ExtraInfo struct {
	SpecName     string
	TokenSymbol  string
	SpecVersion  uint32
	Base58Prefix uint16
	Decimals     uint8
}

// digestV1 is the variant index of MetadataDigest::V1.
const digestV1 byte = 1

// MetadataDigest is the V1 metadata digest. Its hash is the "metadata
// hash" a signer includes in the CheckMetadataHash extension.
type MetadataDigest struct {
	ExtraInfo
	TypeInformationTreeRoot Hash
	ExtrinsicMetadataHash   Hash
}

// NewMetadataDigest assembles a V1 digest from the two roots an engine
// computes and the caller's chain information.
func NewMetadataDigest(typeRoot, extrinsicHash Hash, info ExtraInfo) *MetadataDigest {
	return &MetadataDigest{
		ExtraInfo:               info,
		TypeInformationTreeRoot: typeRoot,
		ExtrinsicMetadataHash:   extrinsicHash,
	}
}

// Encode returns the SCALE encoding of the digest.
func (d *MetadataDigest) Encode() []byte {
	w := scale.NewWriter()
	w.Byte(digestV1)
	w.WriteBytes(d.TypeInformationTreeRoot[:])
	w.WriteBytes(d.ExtrinsicMetadataHash[:])
	w.WriteU32LE(d.SpecVersion)
	w.WriteString(d.SpecName)
	w.WriteU16LE(d.Base58Prefix)
	w.Byte(d.Decimals)
	w.WriteString(d.TokenSymbol)
	return w.Bytes()
}

// Hash returns the BLAKE3 hash of the encoded digest.
func (d *MetadataDigest) Hash() Hash {
	return sum(d.Encode())
}

// Type is one leaf of the type information tree. Encoded holds the
// SCALE encoding of the type exactly as the engine produced it.
type Type struct {
	Encoded []byte
	TypeID  uint32
}

// Hash returns the leaf hash of the type.
func (t Type) Hash() Hash {
	return sum(t.Encoded)
}

// Proof carries the leaves needed to decode one extrinsic plus the node
// hashes needed to tie them to the type tree root.
type Proof struct {
	// Leaves are sorted left-most first.
	Leaves []Type
	// LeafIndices gives each leaf's position in the tree, same order as Leaves.
	LeafIndices []uint32
	// Nodes are the hashes that cannot be computed from the leaves, sorted
	// left to right, root to leaf.
	Nodes []Hash
}

// Encode returns the SCALE encoding of the proof.
func (p *Proof) Encode() []byte {
	w := scale.NewWriter()

	w.WriteCompact(uint64(len(p.Leaves)))
	for _, leaf := range p.Leaves {
		w.WriteBytes(leaf.Encoded)
	}

	w.WriteCompact(uint64(len(p.LeafIndices)))
	for _, idx := range p.LeafIndices {
		w.WriteU32LE(idx)
	}

	w.WriteCompact(uint64(len(p.Nodes)))
	for _, n := range p.Nodes {
		w.WriteBytes(n[:])
	}

	return w.Bytes()
}

// Hex returns the encoded proof as a hex string.
func (p *Proof) Hex() string {
	return hex.EncodeToString(p.Encode())
}

// NodeHexes returns the node hashes as hex strings.
func (p *Proof) NodeHexes() []string {
	out := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		out[i] = n.String()
	}
	return out
}
