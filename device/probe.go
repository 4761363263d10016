package device

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind identifies the class of M2M node a caller wants to open (§4.1 open).
type Kind int

const (
	KindDecoder Kind = iota
	KindEncoder
	KindImageProcessor
	KindJPEGDecoder
)

func (k Kind) String() string {
	switch k {
	case KindDecoder:
		return "decoder"
	case KindEncoder:
		return "encoder"
	case KindImageProcessor:
		return "image-processor"
	case KindJPEGDecoder:
		return "jpeg-decoder"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ProbeTable is the ordered list of candidate device paths to try per kind
// (§6 device path probing order). go4vl's GetAllDevicePaths scans /dev for
// whatever video nodes exist; an M2M codec engine instead needs a fixed,
// kind-specific candidate list, since the same /dev/videoN number means a
// different thing on every board.
type ProbeTable struct {
	Paths map[Kind][]string
}

// DefaultProbeTable is the as-shipped example path list from §6.
func DefaultProbeTable() ProbeTable {
	return ProbeTable{Paths: map[Kind][]string{
		KindDecoder:        {"/dev/video10"},
		KindEncoder:        {"/dev/video11"},
		KindImageProcessor: {"/dev/video12"},
		KindJPEGDecoder:    {"/dev/jpeg-dec"},
	}}
}

// probeOverride is the on-disk shape of an optional platform override file,
// loaded the way dmzoneill-ollama-proxy loads its routing config from YAML.
type probeOverride struct {
	Decoder        []string `yaml:"decoder"`
	Encoder        []string `yaml:"encoder"`
	ImageProcessor []string `yaml:"image_processor"`
	JPEGDecoder    []string `yaml:"jpeg_decoder"`
}

// LoadProbeTable reads an optional YAML override of the default probe
// table. A kind absent from the file keeps its default candidate list.
func LoadProbeTable(path string) (ProbeTable, error) {
	table := DefaultProbeTable()

	data, err := os.ReadFile(path)
	if err != nil {
		return ProbeTable{}, fmt.Errorf("device: load probe table %s: %w", path, err)
	}
	var override probeOverride
	if err := yaml.Unmarshal(data, &override); err != nil {
		return ProbeTable{}, fmt.Errorf("device: parse probe table %s: %w", path, err)
	}

	if len(override.Decoder) > 0 {
		table.Paths[KindDecoder] = override.Decoder
	}
	if len(override.Encoder) > 0 {
		table.Paths[KindEncoder] = override.Encoder
	}
	if len(override.ImageProcessor) > 0 {
		table.Paths[KindImageProcessor] = override.ImageProcessor
	}
	if len(override.JPEGDecoder) > 0 {
		table.Paths[KindJPEGDecoder] = override.JPEGDecoder
	}
	return table, nil
}
