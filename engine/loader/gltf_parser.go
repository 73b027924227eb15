package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Common errors returned by the parser
var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errAccessorBounds     = errors.New("accessor exceeds buffer bounds")
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir        string
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser loads a glTF/GLB document and reads typed accessor data out of its buffers.
// This is internal to the loader package.
type gltfParser interface {
	// Parse loads and parses a glTF/GLB file. The GLB magic number wins over the extension.
	//
	// Parameters:
	//   - path: path to the glTF or GLB file
	//
	// Returns:
	//   - error: error if reading, decoding or buffer loading fails
	Parse(path string) error

	// ParseReader parses a glTF document from a stream. Relative buffer URIs resolve
	// against baseDir.
	//
	// Parameters:
	//   - r: the reader providing the document
	//   - isGLB: true for GLB binary data, false for glTF JSON
	//   - baseDir: directory for external buffers and images, may be empty
	//
	// Returns:
	//   - error: error if parsing fails
	ParseReader(r io.Reader, isGLB bool, baseDir string) error

	// Document returns the parsed document, or nil before a successful parse.
	Document() *gltfDocument

	// BaseDir returns the directory relative URIs resolve against.
	BaseDir() string

	// ReadAccessorData reads the tightly packed bytes of an accessor, removing any stride.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []byte: the element bytes
	//   - error: error if the accessor is out of range, sparse or exceeds its buffer
	ReadAccessorData(accessorIndex int) ([]byte, error)

	// ReadVec2Accessor reads a VEC2 FLOAT accessor.
	ReadVec2Accessor(accessorIndex int) ([][2]float32, error)

	// ReadVec3Accessor reads a VEC3 FLOAT accessor.
	ReadVec3Accessor(accessorIndex int) ([][3]float32, error)

	// ReadVec4Accessor reads a VEC4 FLOAT accessor.
	ReadVec4Accessor(accessorIndex int) ([][4]float32, error)

	// ReadIndicesAccessor reads a SCALAR accessor of unsigned byte, short or int indices,
	// widened to uint32.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []uint32: the indices
	//   - error: error if reading fails or the component type is not an index type
	ReadIndicesAccessor(accessorIndex int) ([]uint32, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new glTF parser instance.
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) BaseDir() string {
	return p.baseDir
}

func (p *gltfParserImpl) Parse(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	p.baseDir = filepath.Dir(path)

	if isGLBData(data) {
		return p.parseGLB(data)
	}
	return p.decodeDocument(data)
}

func (p *gltfParserImpl) ParseReader(r io.Reader, isGLB bool, baseDir string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}
	p.baseDir = baseDir

	if isGLB || isGLBData(data) {
		return p.parseGLB(data)
	}
	return p.decodeDocument(data)
}

// isGLBData reports whether data starts with the GLB magic number.
func isGLBData(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic
}

// parseGLB splits a GLB container into its JSON and BIN chunks.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func (p *gltfParserImpl) parseGLB(data []byte) error {
	if len(data) < 12 {
		return errors.New("GLB file too small")
	}

	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read GLB header: %w", err)
	}
	if header.Magic != gltfGLBMagic {
		return errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return errInvalidGLBVersion
	}

	var jsonData []byte
	for {
		var chunk gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to read chunk header: %w", err)
		}
		if int64(chunk.ChunkLength) > int64(r.Len()) {
			return fmt.Errorf("GLB chunk of %d bytes exceeds file", chunk.ChunkLength)
		}

		chunkData := make([]byte, chunk.ChunkLength)
		if _, err := io.ReadFull(r, chunkData); err != nil {
			return fmt.Errorf("failed to read chunk data: %w", err)
		}

		switch chunk.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = chunkData
		case gltfGLBChunkBIN:
			p.glbBinaryChunk = chunkData
		}
	}

	if jsonData == nil {
		return errMissingJSONChunk
	}
	return p.decodeDocument(jsonData)
}

// decodeDocument unmarshals the JSON, validates the version and required extensions and
// loads every buffer.
func (p *gltfParserImpl) decodeDocument(jsonData []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}
	// no extensions are implemented, so any required one makes the asset unreadable
	if len(doc.ExtensionsRequired) > 0 {
		return fmt.Errorf("%w: required extensions %s", ErrUnsupportedFormat, strings.Join(doc.ExtensionsRequired, ", "))
	}
	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return nil
}

// loadBuffers loads all buffer data (from URIs, embedded data, or GLB binary chunk).
func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		switch {
		case buf.URI == "" && i == 0 && p.glbBinaryChunk != nil:
			buf.Data = p.glbBinaryChunk
		case buf.URI == "":
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		default:
			data, err := p.readURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}
	return nil
}

// readURI loads the bytes behind a data URI or a path relative to the document.
func (p *gltfParserImpl) readURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		data, _, err := gltfDecodeDataURI(uri)
		return data, err
	}

	data, err := os.ReadFile(filepath.Join(p.baseDir, filepath.FromSlash(uri)))
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", uri, err)
	}
	return data, nil
}

// gltfDecodeDataURI decodes a base64 data URI into raw bytes and extracts the MIME type.
// Format: data:[<mediatype>][;base64],<data>
func gltfDecodeDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", errInvalidBufferURI
	}
	header, encoded, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return nil, "", errInvalidBufferURI
	}

	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("unsupported data URI encoding: %s", header)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, mimeType, nil
}

// --- Accessor Data Reading ---

func (p *gltfParserImpl) accessor(accessorIndex int) (*gltfAccessor, error) {
	if p.document == nil {
		return nil, errors.New("no document loaded")
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}
	return &p.document.Accessors[accessorIndex], nil
}

func (p *gltfParserImpl) ReadAccessorData(accessorIndex int) ([]byte, error) {
	acc, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Sparse != nil {
		return nil, errors.New("sparse accessors not yet supported")
	}

	elementSize := gltfComponentTypeSize(acc.ComponentType) * gltfAccessorTypeComponentCount(acc.Type)
	if elementSize == 0 {
		return nil, fmt.Errorf("accessor %d: unknown layout %s/%d", accessorIndex, acc.Type, acc.ComponentType)
	}
	result := make([]byte, acc.Count*elementSize)

	// an accessor without a buffer view reads as zeros
	if acc.BufferView == nil {
		return result, nil
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(p.document.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", *acc.BufferView)
	}
	bv := &p.document.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}
	data := p.document.Buffers[bv.Buffer].Data

	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	base := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 {
		if last := base + (acc.Count-1)*stride + elementSize; last > len(data) || last > bv.ByteOffset+bv.ByteLength {
			return nil, fmt.Errorf("accessor %d: %w", accessorIndex, errAccessorBounds)
		}
	}

	for i := 0; i < acc.Count; i++ {
		src := base + i*stride
		copy(result[i*elementSize:(i+1)*elementSize], data[src:src+elementSize])
	}
	return result, nil
}

// readFloatAccessor decodes a FLOAT accessor of the given element type into a slice of T,
// where T is a float32 array matching the element width.
func readFloatAccessor[T any](p *gltfParserImpl, accessorIndex int, accessorType string) ([]T, error) {
	acc, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != accessorType || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("accessor is not %s FLOAT: type=%s, componentType=%d", accessorType, acc.Type, acc.ComponentType)
	}

	data, err := p.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}
	result := make([]T, acc.Count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *gltfParserImpl) ReadVec2Accessor(accessorIndex int) ([][2]float32, error) {
	return readFloatAccessor[[2]float32](p, accessorIndex, gltfAccessorTypeVec2)
}

func (p *gltfParserImpl) ReadVec3Accessor(accessorIndex int) ([][3]float32, error) {
	return readFloatAccessor[[3]float32](p, accessorIndex, gltfAccessorTypeVec3)
}

func (p *gltfParserImpl) ReadVec4Accessor(accessorIndex int) ([][4]float32, error) {
	return readFloatAccessor[[4]float32](p, accessorIndex, gltfAccessorTypeVec4)
}

func (p *gltfParserImpl) ReadIndicesAccessor(accessorIndex int) ([]uint32, error) {
	acc, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("index accessor is not SCALAR: type=%s", acc.Type)
	}

	data, err := p.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}

	result := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		for i := range result {
			result[i] = uint32(data[i])
		}
	case gltfComponentTypeUnsignedShort:
		for i := range result {
			result[i] = uint32(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case gltfComponentTypeUnsignedInt:
		for i := range result {
			result[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	default:
		return nil, fmt.Errorf("unsupported index component type: %d", acc.ComponentType)
	}
	return result, nil
}

// --- Helper Functions ---

// gltfComponentTypeSize returns the byte size of a component type.
func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

// gltfAccessorTypeComponentCount returns the number of components for an accessor type.
func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4, gltfAccessorTypeMat2:
		return 4
	case gltfAccessorTypeMat3:
		return 9
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
