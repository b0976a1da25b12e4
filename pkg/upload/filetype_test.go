package upload

import "testing"

func TestDetectFileType(t *testing.T) {
	cases := []struct {
		filename string
		want     FileType
	}{
		{"train.jsonl", FileTypeDataset},
		{"data.json", FileTypeDataset},
		{"table.csv", FileTypeDataset},
		{"table.parquet", FileTypeDataset},
		{"table.tsv", FileTypeDataset},
		{"notes.txt", FileTypeDataset},

		{"model.pt", FileTypeModelArtifact},
		{"model.pth", FileTypeModelArtifact},
		{"model.ckpt", FileTypeModelArtifact},
		{"model.safetensors", FileTypeModelArtifact},
		{"model.onnx", FileTypeModelArtifact},
		{"graph.pb", FileTypeModelArtifact},
		{"weights.h5", FileTypeModelArtifact},

		{"bundle.zip", FileTypeArchive},
		{"bundle.tar", FileTypeArchive},
		{"bundle.tar.gz", FileTypeArchive}, // last extension wins
		{"bundle.bz2", FileTypeArchive},

		{"DATA.JSONL", FileTypeDataset}, // case-insensitive
		{"noextension", FileTypeUnknown},
		{"trailing.", FileTypeUnknown},
		{"", FileTypeUnknown},
		{"image.png", FileTypeUnknown},
	}

	for _, tc := range cases {
		if got := DetectFileType(tc.filename); got != tc.want {
			t.Errorf("DetectFileType(%q) = %s, want %s", tc.filename, got, tc.want)
		}
	}
}

func TestExt(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"a.JSONL", "jsonl"},
		{"a.tar.gz", "gz"},
		{"noext", ""},
		{"trailing.", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Ext(tc.filename); got != tc.want {
			t.Errorf("Ext(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}
