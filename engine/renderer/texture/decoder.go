package texture

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/resource"
	"go.uber.org/zap"
)

// Key returns the content key of an imported texture. Two textures with the same
// source bytes, color space and sampler share one cache entry.
//
// Parameters:
//   - t: the imported texture
//
// Returns:
//   - string: the cache key
func Key(t *common.ImportedTexture) string {
	params := fmt.Sprintf("%d/%+v", t.ColorSpace, t.Sampler)
	return "texture:" + resource.ContentKey(t.SourceKey(), []byte(params))
}

// decoder is the implementation of the Decoder interface.
type decoder struct {
	cache   resource.Cache[Texture]
	workers int
	logger  *zap.Logger
}

// Decoder decodes imported images in parallel and registers them in a texture cache.
//
// Only CPU work runs on the worker pool. Inserting into the cache happens on the
// caller's goroutine once every image is decoded; GPU upload is left to the cache.
type Decoder interface {
	// Decode decodes every texture not already cached and returns one handle per input.
	// Nil inputs and images that fail to decode yield an empty handle and a warning.
	//
	// Parameters:
	//   - textures: the imported textures, nil entries allowed
	//
	// Returns:
	//   - []resource.Handle[Texture]: the handles, index aligned with textures
	Decode(textures []*common.ImportedTexture) []resource.Handle[Texture]
}

var _ Decoder = &decoder{}

// NewDecoder creates a Decoder that inserts into the given cache.
//
// Parameters:
//   - cache: the texture cache
//   - options: variadic list of DecoderBuilderOption functions to configure the decoder
//
// Returns:
//   - Decoder: the decoder
func NewDecoder(cache resource.Cache[Texture], options ...DecoderBuilderOption) Decoder {
	d := &decoder{
		cache:   cache,
		workers: 4,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

type decodeJob struct {
	key string
	src *common.ImportedTexture
	img common.DecodedImage
	err error
}

func (d *decoder) Decode(textures []*common.ImportedTexture) []resource.Handle[Texture] {
	keys := make([]string, len(textures))
	var jobs []*decodeJob
	queued := make(map[string]bool)
	for i, t := range textures {
		if t == nil {
			continue
		}
		keys[i] = Key(t)
		if queued[keys[i]] || d.cache.Lookup(keys[i]).Valid() {
			continue
		}
		queued[keys[i]] = true
		jobs = append(jobs, &decodeJob{key: keys[i], src: t})
	}

	d.run(jobs)

	for _, job := range jobs {
		if job.err != nil {
			d.logger.Warn("texture decode failed", zap.String("texture", job.src.Name), zap.Error(job.err))
			continue
		}
		tex := NewTexture(job.key,
			WithPixels(job.img),
			WithColorSpace(job.src.ColorSpace),
			WithSampler(job.src.Sampler),
		)
		if _, _, err := d.cache.Insert(job.key, tex); err != nil {
			d.logger.Warn("texture insert failed", zap.String("texture", job.src.Name), zap.Error(err))
		}
	}

	handles := make([]resource.Handle[Texture], len(textures))
	for i, key := range keys {
		if key != "" {
			handles[i] = d.cache.Lookup(key)
		}
	}
	return handles
}

// run decodes jobs on a pool sized for this batch. The pool's Wait blocks until
// workers idle out, so a WaitGroup is the barrier.
func (d *decoder) run(jobs []*decodeJob) {
	if len(jobs) == 0 {
		return
	}
	if len(jobs) == 1 || d.workers <= 1 {
		for _, job := range jobs {
			job.img, job.err = job.src.Decode()
		}
		return
	}

	pool := worker.NewDynamicWorkerPool(min(d.workers, len(jobs)), len(jobs), time.Second)
	defer pool.Stop()

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		j := job
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				j.img, j.err = j.src.Decode()
				return nil, j.err
			},
		})
	}
	wg.Wait()
}
