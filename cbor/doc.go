// Package cbor implements a pull-style parser and an append-only generator
// for the CBOR binary format (RFC 7049), restricted to the subset used on
// the topic-update wire: 64-bit integers, definite- and indefinite-length
// strings, arrays and maps, semantic tags, half/single/double floats and the
// simple values false, true, null, undefined and break.
//
// # Parser
//
// The parser walks an immutable buffer one token at a time. Dispatch is a
// 256-entry table indexed by each token's initial byte, and a stack of open
// container frames tracks definite-length counts and indefinite-length
// items, so nested indefinite containers and stray break markers are handled
// correctly.
//
//	p, _ := cbor.NewParser(data)
//	for {
//	    v, err := p.NextValue()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err // malformed or truncated input
//	    }
//	    // inspect v.Type, v.Uint, v.Bytes, ...
//	}
//
// # Generator
//
// The generator appends canonical, minimal-length encodings to a pooled
// buffer. Integer values and length prefixes always use the shortest header
// form; floats use the narrowest IEEE width that round-trips exactly.
//
//	g := cbor.NewGenerator()
//	defer g.Reset()
//	g.WriteArray(3)
//	for i := 1; i <= 3; i++ {
//	    g.WriteUint(uint64(i))
//	}
//	payload := g.Bytes()
//
// Indefinite-length items are opened with WriteIndefiniteByteString,
// WriteIndefiniteTextString, or WriteArray/WriteMap with IndefiniteLength,
// and must be closed by the caller with WriteBreak.
package cbor
