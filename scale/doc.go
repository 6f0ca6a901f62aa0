// Package scale implements the subset of the SCALE codec needed to unwrap
// runtime metadata and to encode proof and digest values.
//
// SCALE is the little-endian, non-self-describing encoding used by Substrate
// chains. Lengths and other unsigned integers are written in a compact form
// whose low two bits select a 1, 2, 4 or big-integer width:
//
//	r := scale.NewReader(data)
//	inner, err := r.ReadByteString()  // compact length + bytes
//	if err := r.ExpectEOF("OpaqueMetadata"); err != nil {
//	    // trailing bytes
//	}
//
//	w := scale.NewWriter()
//	w.WriteOption(true)
//	w.WriteByteString(inner)
//
// Reader never copies: slices it returns alias the input.
package scale
