package glbuild

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"unsafe"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// Dialect selects the GLSL flavor the [Composer] generates.
type Dialect uint8

const (
	// DialectCore generates GLSL 3.30 core profile code (in/out qualifiers).
	DialectCore Dialect = iota
	// DialectLegacy generates GLSL 1.20 code (attribute/varying qualifiers, gl_FragColor).
	DialectLegacy
)

const (
	versionCore   = "#version 330 core\n"
	versionLegacy = "#version 120\n"
	// fragOutCore is the fragment output variable declared under [DialectCore].
	fragOutCore = "fragColor"
)

// VersionStr returns the version directive that starts every stage's source.
func (d Dialect) VersionStr() string {
	if d == DialectLegacy {
		return versionLegacy
	}
	return versionCore
}

func (d Dialect) fragOutput() string {
	if d == DialectLegacy {
		return "gl_FragColor"
	}
	return fragOutCore
}

// Stage is a programmable shader stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	}
	return "Stage(" + strconv.Itoa(int(s)) + ")"
}

// StorageClass describes where the value of a [Symbol] comes from.
type StorageClass uint8

const (
	// Uniform symbols hold a single value for the whole draw call.
	Uniform StorageClass = iota + 1
	// Attribute symbols are per-vertex inputs read from a [Buffer].
	Attribute
	// Varying symbols are written by the vertex stage and read interpolated by the fragment stage.
	Varying
	// Constant symbols are inlined into the source as a literal.
	Constant
	// Function symbols reference another function's render-name (chained reference).
	Function
)

func (sc StorageClass) String() string {
	switch sc {
	case Uniform:
		return "uniform"
	case Attribute:
		return "attribute"
	case Varying:
		return "varying"
	case Constant:
		return "constant"
	case Function:
		return "function"
	}
	return "StorageClass(" + strconv.Itoa(int(sc)) + ")"
}

func (sc StorageClass) namePrefix() string {
	switch sc {
	case Uniform:
		return "u_"
	case Attribute:
		return "a_"
	case Varying:
		return "v_"
	}
	return ""
}

// GLType is a GLSL value type.
type GLType uint8

const (
	Void GLType = iota
	Float
	Int
	Vec2
	Vec3
	Vec4
	Mat2
	Mat3
	Mat4
)

var typeNames = [...]string{
	Void:  "void",
	Float: "float",
	Int:   "int",
	Vec2:  "vec2",
	Vec3:  "vec3",
	Vec4:  "vec4",
	Mat2:  "mat2",
	Mat3:  "mat3",
	Mat4:  "mat4",
}

func (t GLType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "GLType(" + strconv.Itoa(int(t)) + ")"
}

// Components returns the number of float components in the type. Matrices count all elements.
func (t GLType) Components() int {
	switch t {
	case Float, Int:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4, Mat2:
		return 4
	case Mat3:
		return 9
	case Mat4:
		return 16
	}
	return 0
}

// interpolable reports whether the type may be used as attribute or varying.
func (t GLType) interpolable() bool {
	return t != Void && t != Int && int(t) < len(typeNames)
}

// ParseGLType parses a GLSL type name as written in source code.
func ParseGLType(s string) (GLType, error) {
	for i, name := range typeNames {
		if name == s {
			return GLType(i), nil
		}
	}
	return Void, fmt.Errorf("unsupported GLSL type %q", s)
}

// TypeOf returns the GLSL type equivalent to the Go value's type.
func TypeOf(v any) (GLType, error) {
	switch v.(type) {
	case float32:
		return Float, nil
	case int32, int:
		return Int, nil
	case [2]float32, ms2.Vec:
		return Vec2, nil
	case [3]float32, ms3.Vec:
		return Vec3, nil
	case [4]float32:
		return Vec4, nil
	case ms2.Mat2:
		return Mat2, nil
	case ms3.Mat3:
		return Mat3, nil
	case [16]float32, ms3.Mat4:
		return Mat4, nil
	case nil:
		return Void, errors.New("nil value")
	}
	return Void, fmt.Errorf("equivalent type not implemented for %T", v)
}

// Float32s appends the float components of v in the column-major order
// expected by OpenGL uniform functions. [16]float32 is taken as column-major already.
func Float32s(dst []float32, v any) ([]float32, error) {
	switch val := v.(type) {
	case float32:
		return append(dst, val), nil
	case int32:
		return append(dst, float32(val)), nil
	case int:
		return append(dst, float32(val)), nil
	case [2]float32:
		return append(dst, val[:]...), nil
	case ms2.Vec:
		return append(dst, val.X, val.Y), nil
	case [3]float32:
		return append(dst, val[:]...), nil
	case ms3.Vec:
		return append(dst, val.X, val.Y, val.Z), nil
	case [4]float32:
		return append(dst, val[:]...), nil
	case [16]float32:
		return append(dst, val[:]...), nil
	case ms2.Mat2:
		arr := val.Array()
		return appendColumnMajor(dst, 2, arr[:]), nil
	case ms3.Mat3:
		arr := val.Array()
		return appendColumnMajor(dst, 3, arr[:]), nil
	case ms3.Mat4:
		arr := val.Array()
		return appendColumnMajor(dst, 4, arr[:]), nil
	}
	return dst, fmt.Errorf("equivalent type not implemented for %T", v)
}

func appendColumnMajor(dst []float32, n int, rowMajor []float32) []float32 {
	for col := 0; col < n; col++ {
		for row := 0; row < n; row++ {
			dst = append(dst, rowMajor[row*n+col])
		}
	}
	return dst
}

// AppendLiteral appends v as a GLSL literal expression, i.e: "vec4(1.,0.,0.,1.)".
func AppendLiteral(b []byte, v any) ([]byte, error) {
	t, err := TypeOf(v)
	if err != nil {
		return b, err
	}
	if t == Int {
		switch val := v.(type) {
		case int32:
			return strconv.AppendInt(b, int64(val), 10), nil
		case int:
			return strconv.AppendInt(b, int64(val), 10), nil
		}
	}
	var arr [16]float32
	f, err := Float32s(arr[:0], v)
	if err != nil {
		return b, err
	}
	if t == Float {
		return AppendFloat(b, '-', '.', f[0]), nil
	}
	b = append(b, t.String()...)
	b = append(b, '(')
	b = AppendFloats(b, ',', '-', '.', f...)
	b = append(b, ')')
	return b, nil
}

// Symbol is a named external input referenced by a template placeholder.
// Symbols carry no composition state so the same Symbol may be reused across
// composition passes. Binding one Symbol to several placeholders makes them share
// a single declaration, which is how a varying is written in the vertex stage and
// read in the fragment stage.
type Symbol struct {
	Class StorageClass
	Type  GLType
	// Value is the uniform/constant value or the attribute's [Buffer].
	Value any
	// Name pins the final name of the symbol in generated code. If empty
	// a unique name is generated every composition pass.
	Name string

	fn   *ShaderFunction
	hook string
}

// NewUniform returns a uniform symbol of type t holding v.
func NewUniform(t GLType, v any) *Symbol {
	return &Symbol{Class: Uniform, Type: t, Value: v}
}

// NewAttribute returns a per-vertex attribute symbol reading from buf.
func NewAttribute(t GLType, buf Buffer) *Symbol {
	return &Symbol{Class: Attribute, Type: t, Value: buf}
}

// NewVarying returns a varying symbol. Bind it to a vertex-stage placeholder that writes it
// and to the fragment-stage placeholders that read it.
func NewVarying(t GLType) *Symbol {
	return &Symbol{Class: Varying, Type: t}
}

// NewConstant returns a symbol inlined as a literal in the generated source.
func NewConstant(t GLType, v any) *Symbol {
	return &Symbol{Class: Constant, Type: t, Value: v}
}

// FunctionRef returns a chained reference to fn: the placeholder renders as fn's render-name.
func FunctionRef(fn *ShaderFunction) *Symbol {
	return &Symbol{Class: Function, Type: fn.tmpl.ret, fn: fn}
}

func (s *Symbol) String() string {
	if s.Name != "" {
		return s.Class.String() + " " + s.Type.String() + " " + s.Name
	}
	return s.Class.String() + " " + s.Type.String()
}

// Buffer is an opaque handle to per-vertex data owned by the graphics backend.
// Buffers holding resources which must be released implement a Delete method, see [DeleteBuffer].
type Buffer interface {
	// Rows returns the amount of vertices stored in the buffer.
	Rows() int
	// Type returns the GLSL type of each row.
	Type() GLType
}

// BufferAllocator creates [Buffer] handles from per-vertex data slices.
type BufferAllocator interface {
	NewBuffer(data any) (Buffer, error)
}

// HostBuffer is a [Buffer] kept in host memory. It is the default buffer type used when
// no graphics backend is involved and is what GPU backends upload from.
type HostBuffer struct {
	// Data points to the start of buffer data.
	Data unsafe.Pointer
	// Size of buffer in bytes.
	Size int
	// Stride is the distance in bytes between the start of consecutive rows. It is
	// larger than the row's components when the element type is padded, as ms3.Vec is.
	Stride int
	rows   int
	typ    GLType
}

var _ Buffer = (*HostBuffer)(nil) // Interface implementation compile-time check.

// NewHostBuffer wraps a per-vertex data slice. The slice is not copied.
func NewHostBuffer(data any) (*HostBuffer, error) {
	switch d := data.(type) {
	case []float32:
		return makeHostBuffer(d, Float)
	case [][2]float32:
		return makeHostBuffer(d, Vec2)
	case []ms2.Vec:
		return makeHostBuffer(d, Vec2)
	case [][3]float32:
		return makeHostBuffer(d, Vec3)
	case []ms3.Vec:
		return makeHostBuffer(d, Vec3)
	case [][4]float32:
		return makeHostBuffer(d, Vec4)
	}
	return nil, fmt.Errorf("unsupported vertex data type %T", data)
}

func makeHostBuffer[T any](data []T, t GLType) (*HostBuffer, error) {
	if len(data) == 0 {
		return nil, errors.New("empty vertex data")
	}
	var z T
	stride := int(unsafe.Sizeof(z))
	if stride < 4*t.Components() || stride%4 != 0 {
		return nil, fmt.Errorf("vertex element %T of size %d cannot hold %s", z, stride, t)
	}
	return &HostBuffer{
		Data:   unsafe.Pointer(&data[0]),
		Size:   stride * len(data),
		Stride: stride,
		rows:   len(data),
		typ:    t,
	}, nil
}

// Rows implements [Buffer].
func (hb *HostBuffer) Rows() int { return hb.rows }

// Type implements [Buffer].
func (hb *HostBuffer) Type() GLType { return hb.typ }

// Bytes returns the raw buffer contents without copying.
func (hb *HostBuffer) Bytes() []byte {
	return unsafe.Slice((*byte)(hb.Data), hb.Size)
}

// Delete releases the reference to the wrapped data.
func (hb *HostBuffer) Delete() {
	hb.Data, hb.Size = nil, 0
}

// DeleteBuffer releases b's resources if b implements a Delete method.
// GPU backends return buffers which do.
func DeleteBuffer(b Buffer) {
	if d, ok := b.(interface{ Delete() }); ok {
		d.Delete()
	}
}

// HostAllocator allocates [HostBuffer]s.
type HostAllocator struct{}

// NewBuffer implements [BufferAllocator].
func (HostAllocator) NewBuffer(data any) (Buffer, error) {
	return NewHostBuffer(data)
}

const decimalDigits = 9

// AppendFloat appends a float32 in a format that is a valid GLSL float literal. neg and decimal
// replace the negative sign and decimal point so that floats may be used inside identifiers.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	// Finally trim zeroes.
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

func AppendFloats(b []byte, sep, neg, decimal byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, neg, decimal, v)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}

// AppendDecl appends a global declaration such as "uniform vec4 u_rgba_1;".
func AppendDecl(b []byte, qualifier string, t GLType, name string) []byte {
	b = append(b, qualifier...)
	b = append(b, ' ')
	b = append(b, t.String()...)
	b = append(b, ' ')
	b = append(b, name...)
	b = append(b, ";\n"...)
	return b
}

func hash(b []byte, in uint64) uint64 {
	x := in
	for len(b) >= 8 {
		x ^= binary.LittleEndian.Uint64(b)
		x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
		x = (x ^ (x >> 27)) * 0x94d049bb133111eb
		x ^= x >> 31
		b = b[8:]
	}
	if len(b) > 0 {
		var buf [8]byte
		copy(buf[:], b)
		x ^= binary.LittleEndian.Uint64(buf[:])
		x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
		x = (x ^ (x >> 27)) * 0x94d049bb133111eb
		x ^= x >> 31
	}
	return x
}
