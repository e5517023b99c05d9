package net

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/wattcast/wattcast/internal/activations"
	"github.com/wattcast/wattcast/internal/layer"
	"github.com/wattcast/wattcast/internal/loss"
	"github.com/wattcast/wattcast/internal/opt"
)

// LayerConfig is the serializable description of one layer. Unrollers
// nest the wrapped cell's config in Base; their parameters live in the
// nested config.
type LayerConfig struct {
	Type       string
	InSize     int
	OutSize    int
	Activation string
	Prob       float64
	TimeSteps  int
	ReturnSeq  bool
	Params     []float64
	Base       *LayerConfig
}

func activationName(a activations.Activation) string {
	switch a.(type) {
	case activations.Sigmoid:
		return "sigmoid"
	case activations.Tanh:
		return "tanh"
	case activations.ReLU:
		return "relu"
	default:
		return "linear"
	}
}

func activationByName(name string) (activations.Activation, error) {
	switch name {
	case "sigmoid":
		return activations.Sigmoid{}, nil
	case "tanh":
		return activations.Tanh{}, nil
	case "relu":
		return activations.ReLU{}, nil
	case "linear":
		return activations.Linear{}, nil
	}
	return nil, fmt.Errorf("net: unknown activation %q", name)
}

func configFor(l layer.Layer) (LayerConfig, error) {
	switch v := l.(type) {
	case *layer.Dense:
		return LayerConfig{
			Type:       "dense",
			InSize:     v.InSize(),
			OutSize:    v.OutSize(),
			Activation: activationName(v.Activation()),
			Params:     v.Params(),
		}, nil
	case *layer.LSTM:
		return LayerConfig{
			Type:    "lstm",
			InSize:  v.InSize(),
			OutSize: v.OutSize(),
			Params:  v.Params(),
		}, nil
	case *layer.GRU:
		return LayerConfig{
			Type:    "gru",
			InSize:  v.InSize(),
			OutSize: v.OutSize(),
			Params:  v.Params(),
		}, nil
	case *layer.Dropout:
		return LayerConfig{
			Type:   "dropout",
			InSize: v.InSize(),
			Prob:   v.P(),
		}, nil
	case *layer.SequenceUnroller:
		base, err := configFor(v.Base())
		if err != nil {
			return LayerConfig{}, err
		}
		return LayerConfig{
			Type:      "unroller",
			TimeSteps: v.TimeSteps(),
			ReturnSeq: v.ReturnSequences(),
			Base:      &base,
		}, nil
	}
	return LayerConfig{}, fmt.Errorf("net: cannot serialize layer type %T", l)
}

func layerFromConfig(cfg LayerConfig) (layer.Layer, error) {
	switch cfg.Type {
	case "dense":
		act, err := activationByName(cfg.Activation)
		if err != nil {
			return nil, err
		}
		d := layer.NewDense(cfg.InSize, cfg.OutSize, act)
		d.SetParams(cfg.Params)
		return d, nil
	case "lstm":
		l := layer.NewLSTM(cfg.InSize, cfg.OutSize)
		l.SetParams(cfg.Params)
		return l, nil
	case "gru":
		g := layer.NewGRU(cfg.InSize, cfg.OutSize)
		g.SetParams(cfg.Params)
		return g, nil
	case "dropout":
		return layer.NewDropout(cfg.Prob, cfg.InSize), nil
	case "unroller":
		if cfg.Base == nil {
			return nil, fmt.Errorf("net: unroller config missing base cell")
		}
		base, err := layerFromConfig(*cfg.Base)
		if err != nil {
			return nil, err
		}
		return layer.NewSequenceUnroller(base, cfg.TimeSteps, cfg.ReturnSeq), nil
	}
	return nil, fmt.Errorf("net: unknown layer type %q", cfg.Type)
}

// Save writes the network's architecture and parameters to path.
func (n *Network) Save(path string) error {
	configs := make([]LayerConfig, 0, len(n.layers))
	for _, l := range n.layers {
		cfg, err := configFor(l)
		if err != nil {
			return err
		}
		configs = append(configs, cfg)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("net: create model file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(configs); err != nil {
		return fmt.Errorf("net: encode model: %w", err)
	}
	return nil
}

// Load reads a network saved with Save. The loss and optimizer are
// runtime concerns and are supplied by the caller.
func Load(path string, lossFn loss.Loss, optimizer opt.Optimizer) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("net: open model file: %w", err)
	}
	defer f.Close()

	var configs []LayerConfig
	if err := gob.NewDecoder(f).Decode(&configs); err != nil {
		return nil, fmt.Errorf("net: decode model: %w", err)
	}

	layers := make([]layer.Layer, 0, len(configs))
	for _, cfg := range configs {
		l, err := layerFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}

	nw := New(layers, lossFn, optimizer)
	nw.SetTraining(false)
	return nw, nil
}
