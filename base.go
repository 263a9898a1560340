package shapeshift

// SerializerBase implements every Serializer entry point by rejecting it
// with *ErrTypeMismatch. Embed it and override the shapes a shim accepts.
type SerializerBase struct {
	// Expected describes the accepted shapes in error messages.
	Expected string
}

var _ Serializer = SerializerBase{}

func (b SerializerBase) reject(k Kind) error {
	return &ErrTypeMismatch{Got: k.String(), Expected: b.Expected}
}

func (b SerializerBase) SerializeBool(bool) error             { return b.reject(KindBool) }
func (b SerializerBase) SerializeInt(k Kind, _ int64) error   { return b.reject(k) }
func (b SerializerBase) SerializeUint(k Kind, _ uint64) error { return b.reject(k) }
func (b SerializerBase) SerializeInt128(Int128) error         { return b.reject(KindI128) }
func (b SerializerBase) SerializeUint128(Uint128) error       { return b.reject(KindU128) }
func (b SerializerBase) SerializeFloat(k Kind, _ float64) error {
	return b.reject(k)
}
func (b SerializerBase) SerializeChar(rune) error         { return b.reject(KindChar) }
func (b SerializerBase) SerializeStr(string) error        { return b.reject(KindStr) }
func (b SerializerBase) SerializeBytes([]byte) error      { return b.reject(KindBytes) }
func (b SerializerBase) SerializeUnit() error             { return b.reject(KindUnit) }
func (b SerializerBase) SerializeNone() error             { return b.reject(KindNone) }
func (b SerializerBase) SerializeSome(Serializable) error { return b.reject(KindSome) }
func (b SerializerBase) SerializeSeq(int) (SeqSerializer, error) {
	return nil, b.reject(KindSeq)
}
func (b SerializerBase) SerializeMap(int) (MapSerializer, error) {
	return nil, b.reject(KindMap)
}
func (b SerializerBase) SerializeStruct(string, int) (StructSerializer, error) {
	return nil, b.reject(KindMap)
}
func (b SerializerBase) SerializeUnitVariant(string, uint32, string) error {
	return b.reject(KindUnitVariant)
}
func (b SerializerBase) SerializeNewtypeVariant(string, uint32, string, Serializable) error {
	return b.reject(KindNewtypeVariant)
}
func (b SerializerBase) SerializeTupleVariant(string, uint32, string, int) (SeqSerializer, error) {
	return nil, b.reject(KindTupleVariant)
}
func (b SerializerBase) SerializeStructVariant(string, uint32, string, int) (StructSerializer, error) {
	return nil, b.reject(KindStructVariant)
}

// VisitorBase implements every Visitor entry point by rejecting it with
// *ErrTypeMismatch. Embed it and override the shapes a visitor accepts.
type VisitorBase struct {
	// Expected describes the accepted shapes in error messages.
	Expected string
}

var _ Visitor = VisitorBase{}

func (b VisitorBase) reject(k Kind) error {
	return &ErrTypeMismatch{Got: k.String(), Expected: b.Expected}
}

func (b VisitorBase) VisitBool(bool) error             { return b.reject(KindBool) }
func (b VisitorBase) VisitInt(k Kind, _ int64) error   { return b.reject(k) }
func (b VisitorBase) VisitUint(k Kind, _ uint64) error { return b.reject(k) }
func (b VisitorBase) VisitInt128(Int128) error         { return b.reject(KindI128) }
func (b VisitorBase) VisitUint128(Uint128) error       { return b.reject(KindU128) }
func (b VisitorBase) VisitFloat(k Kind, _ float64) error {
	return b.reject(k)
}
func (b VisitorBase) VisitChar(rune) error          { return b.reject(KindChar) }
func (b VisitorBase) VisitStr(string) error         { return b.reject(KindStr) }
func (b VisitorBase) VisitBytes([]byte, bool) error { return b.reject(KindBytes) }
func (b VisitorBase) VisitUnit() error              { return b.reject(KindUnit) }
func (b VisitorBase) VisitNone() error              { return b.reject(KindNone) }
func (b VisitorBase) VisitSome(Deserializer) error  { return b.reject(KindSome) }
func (b VisitorBase) VisitSeq(SeqAccess) error      { return b.reject(KindSeq) }
func (b VisitorBase) VisitMap(MapAccess) error      { return b.reject(KindMap) }
func (b VisitorBase) VisitEnum(EnumAccess) error {
	return &ErrTypeMismatch{Got: "enum", Expected: b.Expected}
}
