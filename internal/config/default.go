package config

import (
	"github.com/flarebyte/smfish-pipeline/internal/shell"
	"github.com/flarebyte/smfish-pipeline/internal/stage"
	"github.com/flarebyte/smfish-pipeline/internal/verify"
)

// Default returns the built-in smFISH pipeline: seven notebook stages run
// with jupyter nbconvert from the current directory.
func Default() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Title:         stage.DefaultTitle,
		Root:          ".",
		ResultsDir:    "results",
		Stages: []stage.Stage{
			{Name: "preprocessing", Units: []string{
				"01_preprocessing/1_data_preprocessing.ipynb",
				"01_preprocessing/denoising_fish.ipynb",
				"01_preprocessing/preprocess_for_training.ipynb",
			}},
			{Name: "segmentation", Units: []string{
				"02_segmentation/2_segmentation.ipynb",
				"02_segmentation/binary_nucleus.ipynb",
			}},
			{Name: "training", Units: []string{
				"03_training/3_model_training.ipynb",
			}},
			{Name: "validation", Units: []string{
				"04_validation/4_1_validation_smfish.ipynb",
				"04_validation/4_2_validation_nucleus.ipynb",
			}},
			{Name: "complete_segmentation", Units: []string{
				"02_segmentation/5_complete_segmentation.ipynb",
			}},
			{Name: "analysis", Units: []string{
				"05_analysis/8_blob_detection.ipynb",
				"05_analysis/9_stats.ipynb",
			}},
			{Name: "utilities", Units: []string{
				"06_utilities/6_generate_outlines.ipynb",
				"06_utilities/7_1_frame_compiler.ipynb",
				"06_utilities/7_2_frame_compiler.ipynb",
			}},
		},
		Order: []string{
			"preprocessing",
			"segmentation",
			"training",
			"validation",
			"complete_segmentation",
			"analysis",
			"utilities",
		},
		Shell: Shell{
			Program:          shell.DefaultProgram,
			ArgsTemplate:     append([]string(nil), shell.DefaultArgsTemplate...),
			Env:              map[string]string{},
			CaptureMaxBytes:  shell.DefaultCaptureMaxBytes,
			KillProcessGroup: true,
			TermGraceMs:      shell.DefaultTermGraceMs,
		},
		Verify: Verify{
			Required: []verify.Item{
				{Path: "README.md", Description: "Main README"},
				{Path: "smfish_analysis_pipeline.ipynb", Description: "Main Pipeline Notebook"},
				{Path: "INTEGRATION_SUMMARY.md", Description: "Integration Summary"},
				{Path: "01_preprocessing/README.md", Description: "Preprocessing README"},
				{Path: "02_segmentation/README.md", Description: "Segmentation README"},
				{Path: "03_training/README.md", Description: "Training README"},
				{Path: "04_validation/README.md", Description: "Validation README"},
				{Path: "05_analysis/README.md", Description: "Analysis README"},
				{Path: "06_utilities/README.md", Description: "Utilities README"},
			},
			Dirs: []verify.Item{
				{Path: "results", Description: "Results Directory"},
				{Path: "results/tables", Description: "Results Tables"},
			},
			// 13 analysis notebooks plus the main pipeline notebook.
			MinNotebooks: 14,
		},
	}
}
