// Package assets owns the resource caches of a running engine and turns imported
// documents into cached meshes, materials and textures.
package assets

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/mesh"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
	"go.uber.org/zap"
)

// DefaultMaterialKey is the key of the material used by meshes without one.
const DefaultMaterialKey = "material:default"

// Imported maps the indices of an imported model to cache ids.
type Imported struct {
	// Meshes holds one id per ImportedModel.Meshes entry; 0 for meshes that were skipped.
	Meshes []resource.ID

	// MeshMaterials holds the material id drawn with each mesh.
	MeshMaterials []resource.ID

	// Materials holds one id per ImportedModel.Materials entry.
	Materials []resource.ID
}

// library is the implementation of the Library interface.
type library struct {
	device  gfx.Device
	logger  *zap.Logger
	workers int

	maxPointLights  int
	maxPointShadows int

	meshes    resource.Cache[mesh.Mesh]
	materials resource.Cache[material.Material]
	textures  resource.Cache[texture.Texture]
	shaders   resource.Cache[shader.Shader]
	decoder   texture.Decoder

	defaultMaterial resource.ID
}

// Library owns the mesh, material, texture and shader caches.
//
// Construction registers the built-in shaders, the fallback texture and the default
// material. Nothing touches the device until a resource is first requested.
type Library interface {
	// Device retrieves the device the caches initialize against.
	//
	// Returns:
	//   - gfx.Device: the device
	Device() gfx.Device

	// Meshes retrieves the mesh cache.
	//
	// Returns:
	//   - resource.Cache[mesh.Mesh]: the cache
	Meshes() resource.Cache[mesh.Mesh]

	// Materials retrieves the material cache.
	//
	// Returns:
	//   - resource.Cache[material.Material]: the cache
	Materials() resource.Cache[material.Material]

	// Textures retrieves the texture cache.
	//
	// Returns:
	//   - resource.Cache[texture.Texture]: the cache
	Textures() resource.Cache[texture.Texture]

	// Shaders retrieves the shader cache.
	//
	// Returns:
	//   - resource.Cache[shader.Shader]: the cache
	Shaders() resource.Cache[shader.Shader]

	// DefaultMaterial retrieves the id of the white, fully rough lit material.
	//
	// Returns:
	//   - resource.ID: the material id
	DefaultMaterial() resource.ID

	// Import registers every mesh, material and texture of an imported model.
	// Identical content already in the caches is reused. Texture decode failures
	// are logged and fall back to the white texture.
	//
	// Parameters:
	//   - m: the imported model
	//
	// Returns:
	//   - Imported: cache ids for the model's meshes and materials
	//   - error: an error if m is nil
	Import(m *model.ImportedModel) (Imported, error)

	// AddMesh registers a mesh under a content key.
	//
	// Parameters:
	//   - name: the mesh name
	//   - vertices: the interleaved vertices
	//   - indices: the triangle indices
	//
	// Returns:
	//   - resource.Handle[mesh.Mesh]: the cached mesh
	//   - error: an error if the key is invalid
	AddMesh(name string, vertices []model.Vertex, indices []uint32) (resource.Handle[mesh.Mesh], error)

	// AddMaterial registers a material under key.
	//
	// Parameters:
	//   - key: the material key
	//   - options: material builder options
	//
	// Returns:
	//   - resource.Handle[material.Material]: the cached material
	//   - error: an error if the key is invalid
	AddMaterial(key string, options ...material.MaterialBuilderOption) (resource.Handle[material.Material], error)

	// Release releases every initialized resource in every cache.
	Release()
}

var _ Library = &library{}

// NewLibrary creates a Library bound to a device.
//
// Parameters:
//   - device: the graphics device
//   - options: variadic list of LibraryBuilderOption functions to configure the library
//
// Returns:
//   - Library: the library
func NewLibrary(device gfx.Device, options ...LibraryBuilderOption) Library {
	l := &library{
		device:          device,
		logger:          zap.NewNop(),
		workers:         4,
		maxPointLights:  shader.DefaultMaxPointLights,
		maxPointShadows: 1,
	}
	for _, opt := range options {
		opt(l)
	}

	l.meshes = resource.NewCache[mesh.Mesh](device, resource.WithLogger(l.logger), resource.WithName("mesh"))
	l.materials = resource.NewCache[material.Material](device, resource.WithLogger(l.logger), resource.WithName("material"))
	l.textures = resource.NewCache[texture.Texture](device, resource.WithLogger(l.logger), resource.WithName("texture"))
	l.shaders = resource.NewCache[shader.Shader](device, resource.WithLogger(l.logger), resource.WithName("shader"))
	l.decoder = texture.NewDecoder(l.textures, texture.WithWorkers(l.workers), texture.WithLogger(l.logger))

	builtins := []shader.Shader{
		shader.NewLitShader(l.maxPointLights, l.maxPointShadows),
		shader.NewDirectionalDepthShader(),
		shader.NewPointDepthShader(),
		shader.NewCompositeShader(),
	}
	for _, sh := range builtins {
		l.mustInsert(l.shaders.Insert(sh.Key(), sh))
	}
	l.mustInsert(l.textures.Insert(texture.FallbackKey, texture.NewFallback()))

	h, err := l.AddMaterial(DefaultMaterialKey, material.WithName("default"))
	if err != nil {
		panic(fmt.Sprintf("assets: failed to register default material: %v", err))
	}
	l.defaultMaterial = h.ID()
	return l
}

func (l *library) mustInsert(_ any, _ bool, err error) {
	if err != nil {
		panic(fmt.Sprintf("assets: failed to register built-in resource: %v", err))
	}
}

func (l *library) Device() gfx.Device {
	return l.device
}

func (l *library) Meshes() resource.Cache[mesh.Mesh] {
	return l.meshes
}

func (l *library) Materials() resource.Cache[material.Material] {
	return l.materials
}

func (l *library) Textures() resource.Cache[texture.Texture] {
	return l.textures
}

func (l *library) Shaders() resource.Cache[shader.Shader] {
	return l.shaders
}

func (l *library) DefaultMaterial() resource.ID {
	return l.defaultMaterial
}

func (l *library) AddMesh(name string, vertices []model.Vertex, indices []uint32) (resource.Handle[mesh.Mesh], error) {
	src := &model.ImportedMesh{Name: name, Vertices: vertices, Indices: indices}
	return l.meshes.Load(mesh.Key(src), func() (mesh.Mesh, error) {
		return mesh.FromImported(src), nil
	})
}

func (l *library) AddMaterial(key string, options ...material.MaterialBuilderOption) (resource.Handle[material.Material], error) {
	return l.materials.Load(key, func() (material.Material, error) {
		return material.NewMaterial(l.textures, options...), nil
	})
}

func (l *library) Import(m *model.ImportedModel) (Imported, error) {
	if m == nil {
		return Imported{}, errors.New("assets: imported model is nil")
	}

	out := Imported{
		Meshes:        make([]resource.ID, len(m.Meshes)),
		MeshMaterials: make([]resource.ID, len(m.Meshes)),
		Materials:     make([]resource.ID, len(m.Materials)),
	}

	// one decode batch for the whole document
	sources := make([]*common.ImportedTexture, 0, len(m.Materials)*material.MaxTextureSlots)
	for i := range m.Materials {
		mat := &m.Materials[i]
		sources = append(sources, mat.DiffuseTexture, mat.NormalTexture, mat.MetallicRoughnessTexture)
	}
	decoded := l.decoder.Decode(sources)

	for i := range m.Materials {
		mat := &m.Materials[i]
		slots := decoded[i*material.MaxTextureSlots : (i+1)*material.MaxTextureSlots]
		ids := make([]resource.ID, material.MaxTextureSlots)
		for s, h := range slots {
			ids[s] = h.ID()
		}
		key := materialKey(mat, ids, shader.KeyLit)
		h, err := l.AddMaterial(key,
			material.WithName(mat.Name),
			material.WithBaseColor(mat.BaseColor),
			material.WithMetallic(mat.Metallic),
			material.WithRoughness(mat.Roughness),
			material.WithTexture(material.SlotDiffuse, ids[material.SlotDiffuse]),
			material.WithTexture(material.SlotNormal, ids[material.SlotNormal]),
			material.WithTexture(material.SlotMetallicRoughness, ids[material.SlotMetallicRoughness]),
		)
		if err != nil {
			return Imported{}, fmt.Errorf("assets: material %q of %s: %w", mat.Name, m.Name, err)
		}
		out.Materials[i] = h.ID()
	}

	for i := range m.Meshes {
		src := &m.Meshes[i]
		if len(src.Vertices) == 0 || len(src.Indices) == 0 {
			l.logger.Warn("skipping mesh without geometry", zap.String("model", m.Name), zap.String("mesh", src.Name))
			continue
		}
		h, err := l.meshes.Load(mesh.Key(src), func() (mesh.Mesh, error) {
			return mesh.FromImported(src), nil
		})
		if err != nil {
			return Imported{}, fmt.Errorf("assets: mesh %q of %s: %w", src.Name, m.Name, err)
		}
		out.Meshes[i] = h.ID()
		out.MeshMaterials[i] = l.defaultMaterial
		if idx := src.MaterialIndex; idx >= 0 && idx < len(out.Materials) {
			out.MeshMaterials[i] = out.Materials[idx]
		}
	}

	l.logger.Debug("model imported",
		zap.String("model", m.Name),
		zap.Int("meshes", len(m.Meshes)),
		zap.Int("materials", len(m.Materials)),
	)
	return out, nil
}

func (l *library) Release() {
	l.materials.Release()
	l.meshes.Release()
	l.textures.Release()
	l.shaders.Release()
}

// materialKey hashes everything that affects how a material renders.
func materialKey(mat *common.ImportedMaterial, textures []resource.ID, shaderKey string) string {
	factors := make([]byte, 0, 6*4+len(textures)*8)
	for _, f := range append(mat.BaseColor[:], mat.Metallic, mat.Roughness) {
		factors = binary.LittleEndian.AppendUint32(factors, math.Float32bits(f))
	}
	for _, id := range textures {
		factors = binary.LittleEndian.AppendUint64(factors, uint64(id))
	}
	return "material:" + resource.ContentKey([]byte(mat.Name), factors, []byte(shaderKey))
}
