// substrate/image.go
package substrate

import (
	"bytes"
	"io"

	"github.com/SynapticNetworks/temporal-neuron/causal"
	"github.com/SynapticNetworks/temporal-neuron/internal/wire"
	"github.com/SynapticNetworks/temporal-neuron/persist"
	"github.com/SynapticNetworks/temporal-neuron/types"
)

var (
	tagCFG0 = persist.NewTag("CFG0")
	tagPRNG = persist.NewTag("PRNG")
	tagSTAT = persist.NewTag("STAT")
	tagUNIT = persist.NewTag("UNIT")
	tagMASK = persist.NewTag("MASK")
	tagGRPS = persist.NewTag("GRPS")
	tagSYMB = persist.NewTag("SYMB")
	tagCAUS = persist.NewTag("CAUS")
)

// SaveImageTo writes a full BBI image of the substrate to w.
func (s *Substrate) SaveImageTo(w io.Writer) error {
	if err := persist.WriteHeader(w, persist.CurrentVersion); err != nil {
		return err
	}
	cw := persist.NewWriter(w)

	cfgBuf, err := s.encodeConfig()
	if err != nil {
		return err
	}
	if err := cw.WriteChunk(tagCFG0, cfgBuf); err != nil {
		return err
	}

	var prngBuf bytes.Buffer
	if err := wire.WriteU64(&prngBuf, s.rng.state); err != nil {
		return err
	}
	if err := cw.WriteChunk(tagPRNG, prngBuf.Bytes()); err != nil {
		return err
	}

	var statBuf bytes.Buffer
	if err := wire.WriteU64(&statBuf, s.ageSteps); err != nil {
		return err
	}
	if err := cw.WriteChunk(tagSTAT, statBuf.Bytes()); err != nil {
		return err
	}

	unitBuf, err := s.encodeUnits()
	if err != nil {
		return err
	}
	if err := cw.WriteChunk(tagUNIT, unitBuf); err != nil {
		return err
	}

	maskBuf := s.encodeMasks()
	if err := cw.WriteChunk(tagMASK, maskBuf); err != nil {
		return err
	}

	grpsBuf, err := s.encodeGroups()
	if err != nil {
		return err
	}
	if err := cw.WriteChunk(tagGRPS, grpsBuf); err != nil {
		return err
	}

	var symbBuf bytes.Buffer
	if err := s.symbols.WriteTo(&symbBuf); err != nil {
		return err
	}
	if err := cw.WriteChunk(tagSYMB, symbBuf.Bytes()); err != nil {
		return err
	}

	var causBuf bytes.Buffer
	if err := s.causal.WriteTo(&causBuf); err != nil {
		return err
	}
	return cw.WriteChunk(tagCAUS, causBuf.Bytes())
}

// SaveImageBytes is SaveImageTo over an in-memory buffer.
func (s *Substrate) SaveImageBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.SaveImageTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadImageFrom reconstructs a Substrate from a BBI image. Chunks with
// unknown tags are skipped, since persist.Reader always returns a fully
// framed Chunk regardless of tag.
func LoadImageFrom(r io.Reader) (*Substrate, error) {
	version, err := persist.ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if version != persist.CurrentVersion {
		return nil, &types.ImageError{Stage: "version", Reason: "unsupported image version"}
	}
	cr := persist.NewReader(r)

	s := &Substrate{groups: newGroupTable()}
	var unitPayload []byte
	var maskPayload []byte
	var grpsPayload []byte

	for {
		chunk, err := cr.NextChunk()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch chunk.Tag {
		case tagCFG0:
			cfg, err := decodeConfig(chunk.Payload)
			if err != nil {
				return nil, err
			}
			s.cfg = cfg
		case tagPRNG:
			state, err := wire.ReadU64(bytes.NewReader(chunk.Payload))
			if err != nil {
				return nil, err
			}
			s.rng = loadPRNG(state)
		case tagSTAT:
			age, err := wire.ReadU64(bytes.NewReader(chunk.Payload))
			if err != nil {
				return nil, err
			}
			s.ageSteps = age
		case tagUNIT:
			unitPayload = chunk.Payload
		case tagMASK:
			maskPayload = chunk.Payload
		case tagGRPS:
			grpsPayload = chunk.Payload
		case tagSYMB:
			st, err := causal.ReadSymbolTable(bytes.NewReader(chunk.Payload))
			if err != nil {
				return nil, err
			}
			s.symbols = st
		case tagCAUS:
			mem, err := causal.ReadMemory(bytes.NewReader(chunk.Payload))
			if err != nil {
				return nil, err
			}
			s.causal = mem
		default:
			// Unknown tag: chunk is already fully consumed by NextChunk.
		}
	}

	if unitPayload != nil {
		if err := s.decodeUnits(unitPayload); err != nil {
			return nil, err
		}
	}
	if maskPayload != nil {
		if err := s.decodeMasks(maskPayload); err != nil {
			return nil, err
		}
	}
	if grpsPayload != nil {
		if err := s.decodeGroups(grpsPayload); err != nil {
			return nil, err
		}
	}
	if s.symbols == nil {
		s.symbols = causal.NewSymbolTable()
	}
	if s.causal == nil {
		s.causal = causal.NewMemory(s.cfg.CausalDecay)
	}
	return s, nil
}

// LoadImageBytes is LoadImageFrom over an in-memory byte slice.
func LoadImageBytes(b []byte) (*Substrate, error) {
	return LoadImageFrom(bytes.NewReader(b))
}

func (s *Substrate) encodeConfig() ([]byte, error) {
	var buf bytes.Buffer
	fields := []float64{
		float64(s.cfg.UnitCount), float64(s.cfg.ConnectivityPerUnit),
		s.cfg.Dt, s.cfg.BaseFreq, s.cfg.NoiseAmp, s.cfg.NoisePhase,
		s.cfg.GlobalInhibition, s.cfg.HebbRate, s.cfg.ForgetRate,
		s.cfg.PruneBelow, s.cfg.CoactiveThreshold, s.cfg.PhaseLockThreshold,
		s.cfg.ImprintRate, s.cfg.CausalDecay, float64(s.cfg.MaxUnits),
	}
	for _, f := range fields {
		if err := wire.WriteF32(&buf, float32(f)); err != nil {
			return nil, err
		}
	}
	hasSeed := byte(0)
	if s.cfg.Seed != nil {
		hasSeed = 1
	}
	buf.WriteByte(hasSeed)
	if s.cfg.Seed != nil {
		if err := wire.WriteU64(&buf, uint64(*s.cfg.Seed)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func decodeConfig(payload []byte) (Config, error) {
	r := bytes.NewReader(payload)
	var vals [15]float32
	for i := range vals {
		v, err := wire.ReadF32(r)
		if err != nil {
			return Config{}, err
		}
		vals[i] = v
	}
	cfg := Config{
		UnitCount:           int(vals[0]),
		ConnectivityPerUnit: int(vals[1]),
		Dt:                  float64(vals[2]),
		BaseFreq:            float64(vals[3]),
		NoiseAmp:            float64(vals[4]),
		NoisePhase:          float64(vals[5]),
		GlobalInhibition:    float64(vals[6]),
		HebbRate:            float64(vals[7]),
		ForgetRate:          float64(vals[8]),
		PruneBelow:          float64(vals[9]),
		CoactiveThreshold:   float64(vals[10]),
		PhaseLockThreshold:  float64(vals[11]),
		ImprintRate:         float64(vals[12]),
		CausalDecay:         float64(vals[13]),
		MaxUnits:            int(vals[14]),
	}
	hasSeed := make([]byte, 1)
	if _, err := io.ReadFull(r, hasSeed); err != nil {
		return Config{}, err
	}
	if hasSeed[0] != 0 {
		seed, err := wire.ReadU64(r)
		if err != nil {
			return Config{}, err
		}
		s64 := int64(seed)
		cfg.Seed = &s64
	}
	return cfg, nil
}

func (s *Substrate) encodeUnits() ([]byte, error) {
	var buf bytes.Buffer
	if err := wire.WriteU32(&buf, uint32(len(s.units))); err != nil {
		return nil, err
	}
	for _, u := range s.units {
		if err := wire.WriteF32(&buf, float32(u.Amplitude)); err != nil {
			return nil, err
		}
		if err := wire.WriteF32(&buf, float32(u.Phase)); err != nil {
			return nil, err
		}
		if err := wire.WriteF32(&buf, float32(u.Bias)); err != nil {
			return nil, err
		}
		if err := wire.WriteF32(&buf, float32(u.Decay)); err != nil {
			return nil, err
		}
		if err := wire.WriteU64(&buf, u.BirthTick); err != nil {
			return nil, err
		}
	}
	if err := s.graph.writeCSR(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Substrate) decodeUnits(payload []byte) error {
	r := bytes.NewReader(payload)
	n, err := wire.ReadU32(r)
	if err != nil {
		return err
	}
	units := make([]Unit, n)
	for i := range units {
		amp, err := wire.ReadF32(r)
		if err != nil {
			return err
		}
		phase, err := wire.ReadF32(r)
		if err != nil {
			return err
		}
		bias, err := wire.ReadF32(r)
		if err != nil {
			return err
		}
		decay, err := wire.ReadF32(r)
		if err != nil {
			return err
		}
		birth, err := wire.ReadU64(r)
		if err != nil {
			return err
		}
		units[i] = Unit{
			Amplitude: float64(amp), Phase: float64(phase),
			Bias: float64(bias), Decay: float64(decay), BirthTick: birth,
			LearningEnabled: true,
		}
	}
	s.units = units

	g, err := readCSR(r, int(n))
	if err != nil {
		return err
	}
	s.graph = g
	return nil
}

func (s *Substrate) encodeMasks() []byte {
	n := len(s.units)
	buf := make([]byte, 0, 2*n)
	for _, u := range s.units {
		b := byte(0)
		if u.IsReserved {
			b = 1
		}
		buf = append(buf, b)
	}
	for _, u := range s.units {
		b := byte(0)
		if u.LearningEnabled {
			b = 1
		}
		buf = append(buf, b)
	}
	return buf
}

func (s *Substrate) decodeMasks(payload []byte) error {
	n := len(payload) / 2
	if n*2 != len(payload) {
		return &types.ImageError{Stage: "MASK", Reason: "odd-length payload"}
	}
	if len(s.units) < n {
		s.units = make([]Unit, n)
	}
	for i := 0; i < n; i++ {
		s.units[i].IsReserved = payload[i] != 0
	}
	for i := 0; i < n; i++ {
		s.units[i].LearningEnabled = payload[n+i] != 0
	}
	return nil
}

func (s *Substrate) encodeGroups() ([]byte, error) {
	var buf bytes.Buffer
	all := s.groups.order
	if err := wire.WriteU32(&buf, uint32(len(all))); err != nil {
		return nil, err
	}
	for _, g := range all {
		if err := wire.WriteString(&buf, g.Name); err != nil {
			return nil, err
		}
		kind := byte(0)
		if g.Kind == actionGroupKind {
			kind = 1
		}
		buf.WriteByte(kind)
		if err := wire.WriteU32(&buf, uint32(g.Start)); err != nil {
			return nil, err
		}
		if err := wire.WriteU32(&buf, uint32(g.Width)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (s *Substrate) decodeGroups(payload []byte) error {
	r := bytes.NewReader(payload)
	count, err := wire.ReadU32(r)
	if err != nil {
		return err
	}
	gt := newGroupTable()
	for i := uint32(0); i < count; i++ {
		name, err := wire.ReadString(r)
		if err != nil {
			return err
		}
		kindByte := make([]byte, 1)
		if _, err := io.ReadFull(r, kindByte); err != nil {
			return err
		}
		kind := sensorGroupKind
		if kindByte[0] == 1 {
			kind = actionGroupKind
		}
		start, err := wire.ReadU32(r)
		if err != nil {
			return err
		}
		width, err := wire.ReadU32(r)
		if err != nil {
			return err
		}
		gt.register(&Group{Name: name, Kind: kind, Start: int(start), Width: int(width)})
	}
	s.groups = gt
	return nil
}
