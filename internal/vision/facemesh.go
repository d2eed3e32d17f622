package vision

import (
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"github.com/keagan/interviewlens/internal/config"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"
	ort "github.com/yalue/onnxruntime_go"
)

// Detector finds a single face in an image and returns its landmark mesh.
// ok is false when no face is present.
type Detector interface {
	Detect(img image.Image) (lm Landmarks, ok bool, err error)
	Close() error
}

var ortMu sync.Mutex

// initRuntime loads the onnxruntime shared library once per process.
func initRuntime(libPath string) error {
	ortMu.Lock()
	defer ortMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}
	return nil
}

// FaceMesh runs a MediaPipe face-landmark model exported to ONNX. The model
// takes an NHWC float image in [0, 1] and returns landmarks in input pixel
// space plus a face-presence logit.
type FaceMesh struct {
	logger        zerolog.Logger
	session       *ort.DynamicAdvancedSession
	inputSize     int
	numLandmarks  int
	minConfidence float64
}

// NewFaceMesh loads the model described by cfg.
func NewFaceMesh(logger zerolog.Logger, cfg config.VisionConfig) (*FaceMesh, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}
	if cfg.InputSize <= 0 || cfg.NumLandmarks < minLandmarks {
		return nil, fmt.Errorf("invalid face mesh shape: input %d, landmarks %d", cfg.InputSize, cfg.NumLandmarks)
	}

	if err := initRuntime(cfg.SharedLibraryPath); err != nil {
		return nil, err
	}

	inputNames := []string{cfg.InputName}
	outputNames := []string{cfg.LandmarksOutput, cfg.PresenceOutput}

	sess, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, inputNames, outputNames, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create face mesh session: %w", err)
	}

	logger.Info().
		Str("model", cfg.ModelPath).
		Strs("inputs", inputNames).
		Strs("outputs", outputNames).
		Int("input_size", cfg.InputSize).
		Msg("face mesh model loaded")

	return &FaceMesh{
		logger:        logger.With().Str("detector", "facemesh").Logger(),
		session:       sess,
		inputSize:     cfg.InputSize,
		numLandmarks:  cfg.NumLandmarks,
		minConfidence: cfg.MinConfidence,
	}, nil
}

// Detect runs the model on img. Tensors are allocated per call so a FaceMesh
// can be shared between goroutines.
func (m *FaceMesh) Detect(img image.Image) (Landmarks, bool, error) {
	size := int64(m.inputSize)

	input, err := ort.NewTensor(ort.NewShape(1, size, size, 3), m.preprocess(img))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	coords, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, 1, int64(m.numLandmarks*3)))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create landmarks tensor: %w", err)
	}
	defer coords.Destroy()

	presence, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, 1, 1))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create presence tensor: %w", err)
	}
	defer presence.Destroy()

	inputs := []ort.ArbitraryTensor{input}
	outputs := []ort.ArbitraryTensor{coords, presence}
	if err := m.session.Run(inputs, outputs); err != nil {
		return nil, false, fmt.Errorf("face mesh inference failed: %w", err)
	}

	score := 1.0 / (1.0 + math.Exp(-float64(presence.GetData()[0])))
	if score < m.minConfidence {
		return nil, false, nil
	}

	data := coords.GetData()
	lm := make(Landmarks, m.numLandmarks)
	for i := range lm {
		lm[i] = Point{
			X: float64(data[i*3]) / float64(m.inputSize),
			Y: float64(data[i*3+1]) / float64(m.inputSize),
		}
	}
	return lm, true, nil
}

// preprocess resizes img to the model input and packs it as NHWC floats.
func (m *FaceMesh) preprocess(img image.Image) []float32 {
	n := uint(m.inputSize)
	resized := resize.Resize(n, n, img, resize.Bilinear)

	data := make([]float32, 0, m.inputSize*m.inputSize*3)
	bounds := resized.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			data = append(data,
				float32(r>>8)/255.0,
				float32(g>>8)/255.0,
				float32(b>>8)/255.0,
			)
		}
	}
	return data
}

// Close releases the session. The runtime environment is torn down by the
// owner of the process-wide model registry.
func (m *FaceMesh) Close() error {
	m.logger.Info().Msg("closing face mesh session")
	if m.session != nil {
		return m.session.Destroy()
	}
	return nil
}

// ShutdownRuntime destroys the onnxruntime environment if it was started.
func ShutdownRuntime() error {
	ortMu.Lock()
	defer ortMu.Unlock()
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}
