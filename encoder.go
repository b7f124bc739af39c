package bytedata

// Encoder defines the interface for whole-value serialization to and from
// byte slices. *Codec implements it for the tagged wire format.
type Encoder interface {
	// Encode serializes v into bytes.
	Encode(v any) ([]byte, error)

	// Decode deserializes data into v.
	Decode(data []byte, v any) error
}
