package data

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSeqLength is the training window of generated configs.
const DefaultSeqLength = 390

// TrainingConfig is a Diffusion-TS training configuration for one dataset.
type TrainingConfig struct {
	Model      ModelConfig      `yaml:"model"`
	Solver     SolverConfig     `yaml:"solver"`
	Dataloader DataloaderConfig `yaml:"dataloader"`
}

type ModelConfig struct {
	Target string      `yaml:"target"`
	Params ModelParams `yaml:"params"`
}

type ModelParams struct {
	SeqLength         int     `yaml:"seq_length"`
	FeatureSize       int     `yaml:"feature_size"`
	NLayerEnc         int     `yaml:"n_layer_enc"`
	NLayerDec         int     `yaml:"n_layer_dec"`
	DModel            int     `yaml:"d_model"`
	Timesteps         int     `yaml:"timesteps"`
	SamplingTimesteps int     `yaml:"sampling_timesteps"`
	LossType          string  `yaml:"loss_type"`
	BetaSchedule      string  `yaml:"beta_schedule"`
	NHeads            int     `yaml:"n_heads"`
	MLPHiddenTimes    int     `yaml:"mlp_hidden_times"`
	AttnPd            float64 `yaml:"attn_pd"`
	ResidPd           float64 `yaml:"resid_pd"`
	KernelSize        int     `yaml:"kernel_size"`
	PaddingSize       int     `yaml:"padding_size"`
}

type SolverConfig struct {
	BaseLR                  float64         `yaml:"base_lr"`
	MaxEpochs               int             `yaml:"max_epochs"`
	ResultsFolder           string          `yaml:"results_folder"`
	GradientAccumulateEvery int             `yaml:"gradient_accumulate_every"`
	SaveCycle               int             `yaml:"save_cycle"`
	EMA                     EMAConfig       `yaml:"ema"`
	Scheduler               SchedulerConfig `yaml:"scheduler"`
}

type EMAConfig struct {
	Decay          float64 `yaml:"decay"`
	UpdateInterval int     `yaml:"update_interval"`
}

type SchedulerConfig struct {
	Target string          `yaml:"target"`
	Params SchedulerParams `yaml:"params"`
}

type SchedulerParams struct {
	Factor        float64 `yaml:"factor"`
	Patience      int     `yaml:"patience"`
	MinLR         float64 `yaml:"min_lr"`
	Threshold     float64 `yaml:"threshold"`
	ThresholdMode string  `yaml:"threshold_mode"`
	WarmupLR      float64 `yaml:"warmup_lr"`
	Warmup        int     `yaml:"warmup"`
	Verbose       bool    `yaml:"verbose"`
}

type DataloaderConfig struct {
	TrainDataset DatasetConfig `yaml:"train_dataset"`
	TestDataset  DatasetConfig `yaml:"test_dataset"`
	BatchSize    int           `yaml:"batch_size"`
	SampleSize   int           `yaml:"sample_size"`
	Shuffle      bool          `yaml:"shuffle"`
}

type DatasetConfig struct {
	Target string        `yaml:"target"`
	Params DatasetParams `yaml:"params"`
}

type DatasetParams struct {
	Name          string  `yaml:"name"`
	Proportion    float64 `yaml:"proportion"`
	DataRoot      string  `yaml:"data_root"`
	Window        int     `yaml:"window"`
	Save2npy      bool    `yaml:"save2npy"`
	NegOneToOne   bool    `yaml:"neg_one_to_one"`
	Seed          int     `yaml:"seed"`
	Period        string  `yaml:"period"`
	Style         string  `yaml:"style,omitempty"`
	Distribution  string  `yaml:"distribution,omitempty"`
	Coefficient   float64 `yaml:"coefficient,omitempty"`
	StepSize      float64 `yaml:"step_size,omitempty"`
	SamplingSteps int     `yaml:"sampling_steps,omitempty"`
}

// NewTrainingConfig returns the configuration for dataset gbm-<index>.
func NewTrainingConfig(index, seqLength int) TrainingConfig {
	if seqLength < 1 {
		seqLength = DefaultSeqLength
	}
	root := fmt.Sprintf("Data/datasets/diffusionts_dataset/gbm-%d.csv", index)
	dataset := func(proportion float64, period string) DatasetConfig {
		return DatasetConfig{
			Target: "Utils.Data_utils.real_datasets.CustomDataset",
			Params: DatasetParams{
				Name:        "stock",
				Proportion:  proportion,
				DataRoot:    root,
				Window:      seqLength,
				Save2npy:    true,
				NegOneToOne: true,
				Seed:        123,
				Period:      period,
			},
		}
	}
	test := dataset(0.9, "test")
	test.Params.Style = "separate"
	test.Params.Distribution = "geometric"
	test.Params.Coefficient = 1.0e-2
	test.Params.StepSize = 5.0e-2
	test.Params.SamplingSteps = 200

	return TrainingConfig{
		Model: ModelConfig{
			Target: "Models.interpretable_diffusion.gaussian_diffusion.Diffusion_TS",
			Params: ModelParams{
				SeqLength: seqLength, FeatureSize: 1, NLayerEnc: 2, NLayerDec: 2, DModel: 64,
				Timesteps: 500, SamplingTimesteps: 500, LossType: "l1", BetaSchedule: "cosine",
				NHeads: 4, MLPHiddenTimes: 4, KernelSize: 1,
			},
		},
		Solver: SolverConfig{
			BaseLR:                  1.0e-5,
			MaxEpochs:               10000,
			ResultsFolder:           fmt.Sprintf("./Checkpoints_gbm-%d", index),
			GradientAccumulateEvery: 2,
			SaveCycle:               1000,
			EMA:                     EMAConfig{Decay: 0.995, UpdateInterval: 10},
			Scheduler: SchedulerConfig{
				Target: "engine.lr_sch.ReduceLROnPlateauWithWarmup",
				Params: SchedulerParams{
					Factor: 0.5, Patience: 2000, MinLR: 1.0e-5, Threshold: 1.0e-1,
					ThresholdMode: "rel", WarmupLR: 8.0e-4, Warmup: 500,
				},
			},
		},
		Dataloader: DataloaderConfig{
			TrainDataset: dataset(1.0, "train"),
			TestDataset:  test,
			BatchSize:    64,
			SampleSize:   256,
			Shuffle:      true,
		},
	}
}

// WriteTrainingConfigs writes config_gbm_<i>.yaml for i in 1..count to dir
// and returns the file names.
func WriteTrainingConfigs(dir string, count, seqLength int) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	var files []string
	for i := 1; i <= count; i++ {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(NewTrainingConfig(i, seqLength)); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		name := filepath.Join(dir, fmt.Sprintf("config_gbm_%d.yaml", i))
		if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
			return nil, err
		}
		files = append(files, name)
	}
	return files, nil
}
