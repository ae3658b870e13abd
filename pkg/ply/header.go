package ply

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/philipparndt/gomesh/pkg/meshio"
)

// Encoding is the body layout declared by the format line
type Encoding int

const (
	ASCII Encoding = iota
	BinaryLittleEndian
	BinaryBigEndian
)

func (e Encoding) String() string {
	switch e {
	case ASCII:
		return "ascii"
	case BinaryLittleEndian:
		return "binary_little_endian"
	case BinaryBigEndian:
		return "binary_big_endian"
	}
	return "unknown"
}

// ScalarType is one of the eight PLY scalar types
type ScalarType int

const (
	Int8 ScalarType = iota + 1
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

// scalarTypes maps both the classic and the sized type names
var scalarTypes = map[string]ScalarType{
	"char": Int8, "int8": Int8,
	"uchar": Uint8, "uint8": Uint8,
	"short": Int16, "int16": Int16,
	"ushort": Uint16, "uint16": Uint16,
	"int": Int32, "int32": Int32,
	"uint": Uint32, "uint32": Uint32,
	"float": Float32, "float32": Float32,
	"double": Float64, "float64": Float64,
}

// Size returns the encoded width in bytes
func (t ScalarType) Size() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

// IsInteger reports whether values of the type are whole numbers
func (t ScalarType) IsInteger() bool {
	return t != Float32 && t != Float64
}

// decode reads one value of the type from b, which must hold Size() bytes
func (t ScalarType) decode(b []byte, order binary.ByteOrder) float64 {
	switch t {
	case Int8:
		return float64(int8(b[0]))
	case Uint8:
		return float64(b[0])
	case Int16:
		return float64(int16(order.Uint16(b)))
	case Uint16:
		return float64(order.Uint16(b))
	case Int32:
		return float64(int32(order.Uint32(b)))
	case Uint32:
		return float64(order.Uint32(b))
	case Float32:
		return float64(math.Float32frombits(order.Uint32(b)))
	case Float64:
		return math.Float64frombits(order.Uint64(b))
	}
	return 0
}

// parse reads one ASCII token of the type
func (t ScalarType) parse(tok string) (float64, error) {
	if t.IsInteger() {
		v, err := strconv.ParseInt(tok, 10, 64)
		return float64(v), err
	}
	return strconv.ParseFloat(tok, 64)
}

// Property is a scalar or list property of an element
type Property struct {
	Name string
	Type ScalarType
	// CountType is set for list properties only
	CountType ScalarType
}

// IsList reports whether the property is a counted list
func (p Property) IsList() bool {
	return p.CountType != 0
}

// Element is a named record type with a declared instance count
type Element struct {
	Name       string
	Count      int
	Properties []Property
}

// index returns the position of the named property, or -1
func (e *Element) index(name string) int {
	for i, p := range e.Properties {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// minRecordSize is the smallest binary encoding of one instance: every
// scalar plus the length prefix of every list, with lists empty
func (e *Element) minRecordSize() int {
	size := 0
	for _, p := range e.Properties {
		if p.IsList() {
			size += p.CountType.Size()
		} else {
			size += p.Type.Size()
		}
	}
	return size
}

// Header is the parsed PLY header
type Header struct {
	Encoding Encoding
	Version  string
	Elements []*Element
	Comments []string
	// Lines is the number of header lines including end_header
	Lines int
	// Size is the byte length of the header including the end_header terminator
	Size int
}

// Element returns the named element or nil
func (h *Header) Element(name string) *Element {
	for _, e := range h.Elements {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// ParseHeader reads the header at the start of data
func ParseHeader(data []byte) (*Header, error) {
	h := &Header{}
	rest := data
	sawFormat := false

	for {
		nl := bytes.IndexByte(rest, '\n')
		if nl < 0 {
			return nil, &meshio.TruncatedInputError{Format: meshio.FormatPLY, Msg: "input ends before \"end_header\""}
		}
		line := strings.TrimRight(string(rest[:nl]), "\r")
		rest = rest[nl+1:]
		h.Lines++
		h.Size += nl + 1

		fields := strings.Fields(line)
		if h.Lines == 1 {
			if len(fields) != 1 || fields[0] != "ply" {
				return nil, headerError(h.Lines, "missing \"ply\" magic")
			}
			continue
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) != 3 {
				return nil, headerError(h.Lines, "malformed format line")
			}
			switch fields[1] {
			case "ascii":
				h.Encoding = ASCII
			case "binary_little_endian":
				h.Encoding = BinaryLittleEndian
			case "binary_big_endian":
				h.Encoding = BinaryBigEndian
			default:
				return nil, headerError(h.Lines, "unknown encoding %q", fields[1])
			}
			h.Version = fields[2]
			sawFormat = true
		case "comment", "obj_info":
			h.Comments = append(h.Comments, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))
		case "element":
			if len(fields) != 3 {
				return nil, headerError(h.Lines, "malformed element line")
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, headerError(h.Lines, "invalid element count %q", fields[2])
			}
			h.Elements = append(h.Elements, &Element{Name: fields[1], Count: count})
		case "property":
			if len(h.Elements) == 0 {
				return nil, headerError(h.Lines, "property before any element")
			}
			prop, err := parseProperty(fields[1:], h.Lines)
			if err != nil {
				return nil, err
			}
			el := h.Elements[len(h.Elements)-1]
			el.Properties = append(el.Properties, prop)
		case "end_header":
			if !sawFormat {
				return nil, headerError(h.Lines, "missing format line")
			}
			return h, nil
		default:
			return nil, headerError(h.Lines, "unknown header keyword %q", fields[0])
		}
	}
}

// parseProperty parses the tail of a property line:
// property <type> <name>
// property list <count type> <item type> <name>
func parseProperty(fields []string, line int) (Property, error) {
	if len(fields) > 0 && fields[0] == "list" {
		if len(fields) != 4 {
			return Property{}, headerError(line, "malformed list property")
		}
		countType, err := scalarType(fields[1], line)
		if err != nil {
			return Property{}, err
		}
		if !countType.IsInteger() {
			return Property{}, headerError(line, "list count type %q is not an integer type", fields[1])
		}
		itemType, err := scalarType(fields[2], line)
		if err != nil {
			return Property{}, err
		}
		return Property{Name: fields[3], Type: itemType, CountType: countType}, nil
	}

	if len(fields) != 2 {
		return Property{}, headerError(line, "malformed property")
	}
	typ, err := scalarType(fields[0], line)
	if err != nil {
		return Property{}, err
	}
	return Property{Name: fields[1], Type: typ}, nil
}

func scalarType(name string, line int) (ScalarType, error) {
	t, ok := scalarTypes[name]
	if !ok {
		return 0, headerError(line, "unsupported scalar type %q", name)
	}
	return t, nil
}

func headerError(line int, msg string, args ...any) error {
	return meshio.LineError(meshio.FormatPLY, line, nil, msg, args...)
}
