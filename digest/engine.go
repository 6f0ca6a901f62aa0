package digest

import (
	"encoding/hex"

	"github.com/wippyai/merkleized-metadata/errors"
	"github.com/wippyai/merkleized-metadata/metadata"
)

// Engine computes metadata digests and extrinsic proofs. The merkleization
// itself lives outside this module; implementations adapt an existing
// engine to this call shape.
type Engine interface {
	// MetadataDigest builds the digest for md and the given chain information.
	MetadataDigest(md *metadata.RuntimeMetadata, info ExtraInfo) (*MetadataDigest, error)

	// ProofForExtrinsic builds a proof covering every type needed to decode
	// extrinsic. additionalSigned is nil when absent.
	ProofForExtrinsic(md *metadata.RuntimeMetadata, extrinsic, additionalSigned []byte) (*Proof, error)

	// ProofForExtrinsicParts builds a proof from the call data alone. When
	// signed is non-nil the extrinsic is treated as signed, and the signature,
	// address and signed extension types are included.
	ProofForExtrinsicParts(md *metadata.RuntimeMetadata, call []byte, signed *SignedExtrinsicParts) (*Proof, error)
}

// SignedExtrinsicParts are the raw signed extension bytes of an extrinsic.
type SignedExtrinsicParts struct {
	IncludedInExtrinsic  []byte
	IncludedInSignedData []byte
}

// SignedExtrinsicData is SignedExtrinsicParts in hex, as callers usually
// hold it.
type SignedExtrinsicData struct {
	IncludedInExtrinsic  string
	IncludedInSignedData string
}

// Methods exposes an Engine through hex-string arguments. Extrinsic and
// signed extension hex is plain: no 0x prefix and no surrounding space.
type Methods struct {
	engine Engine
}

// NewMethods wraps engine.
func NewMethods(engine Engine) *Methods {
	return &Methods{engine: engine}
}

// GenerateMetadataDigest returns the metadata digest. Its Hash is the
// metadata hash defined by RFC-78.
func (m *Methods) GenerateMetadataDigest(md *metadata.RuntimeMetadata, info ExtraInfo) (*MetadataDigest, error) {
	if md == nil {
		return nil, errors.InvalidInput(errors.PhaseBinding, "metadata is nil")
	}
	d, err := m.engine.MetadataDigest(md, info)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseBinding, errors.KindEngine, err, "generate metadata digest")
	}
	return d, nil
}

// GenerateProofForExtrinsic returns a proof for a full extrinsic.
// additionalSignedHex may be nil.
func (m *Methods) GenerateProofForExtrinsic(extrinsicHex string, additionalSignedHex *string, md *metadata.RuntimeMetadata) (*Proof, error) {
	if md == nil {
		return nil, errors.InvalidInput(errors.PhaseBinding, "metadata is nil")
	}

	extrinsic, err := hex.DecodeString(extrinsicHex)
	if err != nil {
		return nil, errors.InvalidHex(errors.PhaseBinding, "extrinsic bytes", err)
	}

	var additional []byte
	if additionalSignedHex != nil {
		additional, err = hex.DecodeString(*additionalSignedHex)
		if err != nil {
			return nil, errors.InvalidHex(errors.PhaseBinding, "additional signed bytes", err)
		}
	}

	p, err := m.engine.ProofForExtrinsic(md, extrinsic, additional)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseBinding, errors.KindEngine, err, "generate proof for extrinsic")
	}
	return p, nil
}

// GenerateProofForExtrinsicParts returns a proof for an extrinsic built
// from callHex and, if signed, the signed extension data.
func (m *Methods) GenerateProofForExtrinsicParts(callHex string, signed *SignedExtrinsicData, md *metadata.RuntimeMetadata) (*Proof, error) {
	if md == nil {
		return nil, errors.InvalidInput(errors.PhaseBinding, "metadata is nil")
	}

	call, err := hex.DecodeString(callHex)
	if err != nil {
		return nil, errors.InvalidHex(errors.PhaseBinding, "call data bytes", err)
	}

	var parts *SignedExtrinsicParts
	if signed != nil {
		inExtrinsic, err := hex.DecodeString(signed.IncludedInExtrinsic)
		if err != nil {
			return nil, errors.InvalidHex(errors.PhaseBinding, "'in extrinsic payload' bytes", err)
		}
		inSigned, err := hex.DecodeString(signed.IncludedInSignedData)
		if err != nil {
			return nil, errors.InvalidHex(errors.PhaseBinding, "'in signed data' bytes", err)
		}
		parts = &SignedExtrinsicParts{
			IncludedInExtrinsic:  inExtrinsic,
			IncludedInSignedData: inSigned,
		}
	}

	p, err := m.engine.ProofForExtrinsicParts(md, call, parts)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseBinding, errors.KindEngine, err, "generate proof for extrinsic parts")
	}
	return p, nil
}
