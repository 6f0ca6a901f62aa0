// Package digest defines the boundary to a merkleized metadata engine
// (RFC-78) and the values that cross it.
//
// The engine that builds the type information tree is external. This
// package fixes its call shape (Engine), wraps it with hex-facing calls
// (Methods), and owns the encodings that are stable across engines:
// the V1 MetadataDigest and the Proof.
//
//	md, err := metadata.FromHex(metadataHex)
//	m := digest.NewMethods(engine)
//	d, err := m.GenerateMetadataDigest(md, digest.ExtraInfo{
//	    SpecVersion:  1_002_004,
//	    SpecName:     "polkadot",
//	    Base58Prefix: 0,
//	    Decimals:     10,
//	    TokenSymbol:  "DOT",
//	})
//	fmt.Println(d.Hash())
//
// All hashes are BLAKE3-256.
package digest
