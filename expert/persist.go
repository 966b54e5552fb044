package expert

import (
	"bytes"
	"errors"
	"io"
	"sort"

	"github.com/SynapticNetworks/temporal-neuron/internal/wire"
	"github.com/SynapticNetworks/temporal-neuron/substrate"
)

// stateVersion is the current expert-manager state blob version. Version 1
// lacked context stats and signal thresholds; version 2 added context
// stats; version 3 replaced the legacy single confidence-gap threshold
// with the three named signal thresholds. Loaders accept all three and
// default missing thresholds to (0.55, 0.65, 0.25) when reading an older
// version.
const stateVersion = 3

var errUnsupportedStateVersion = errors.New("expert: unsupported state blob version")

// SaveState serializes the manager's policy, cooldowns, and per-context
// statistics, plus (in Full mode) every active expert's brain images and
// fork points. DropActive writes the same header and maps but zero
// experts, so a subsequent LoadState starts with no in-flight exploration.
func (m *Manager) SaveState(enabled bool, mode PersistenceMode) ([]byte, error) {
	var buf bytes.Buffer

	if err := wire.WriteU32(&buf, stateVersion); err != nil {
		return nil, err
	}
	if err := writeBool(&buf, enabled); err != nil {
		return nil, err
	}
	if err := buf.WriteByte(byte(mode)); err != nil {
		return nil, err
	}
	if err := wire.WriteU32(&buf, m.nextID); err != nil {
		return nil, err
	}

	if err := writePolicy(&buf, m.policy); err != nil {
		return nil, err
	}
	if err := wire.WriteString(&buf, m.lastSpawnReason); err != nil {
		return nil, err
	}
	if err := wire.WriteString(&buf, m.lastConsolidation); err != nil {
		return nil, err
	}

	if err := writeCooldowns(&buf, m.cooldowns); err != nil {
		return nil, err
	}
	if err := writeStats(&buf, m.stats); err != nil {
		return nil, err
	}

	if mode == Full {
		if err := writeExperts(&buf, m.experts); err != nil {
			return nil, err
		}
	} else {
		if err := wire.WriteU32(&buf, 0); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// LoadState decodes a blob written by SaveState, returning the manager
// (governed by the decoded policy), whether the manager was enabled, and
// its persistence mode at save time.
func LoadState(data []byte) (*Manager, bool, PersistenceMode, error) {
	r := bytes.NewReader(data)

	version, err := wire.ReadU32(r)
	if err != nil {
		return nil, false, Full, err
	}
	if version < 1 || version > stateVersion {
		return nil, false, Full, errUnsupportedStateVersion
	}

	enabled, err := readBool(r)
	if err != nil {
		return nil, false, Full, err
	}
	modeByte, err := r.ReadByte()
	if err != nil {
		return nil, false, Full, err
	}
	mode := PersistenceMode(modeByte)

	nextID, err := wire.ReadU32(r)
	if err != nil {
		return nil, false, Full, err
	}

	policy, err := readPolicy(r, version)
	if err != nil {
		return nil, false, Full, err
	}

	lastSpawnReason, err := wire.ReadString(r)
	if err != nil {
		return nil, false, Full, err
	}
	lastConsolidation, err := wire.ReadString(r)
	if err != nil {
		return nil, false, Full, err
	}

	m := newManagerAtDepth(policy, 0)
	m.nextID = nextID
	m.lastSpawnReason = lastSpawnReason
	m.lastConsolidation = lastConsolidation

	if m.cooldowns, err = readCooldowns(r); err != nil {
		return nil, false, Full, err
	}

	if version >= 2 {
		if m.stats, err = readStats(r); err != nil {
			return nil, false, Full, err
		}
	} else {
		m.stats = make(map[string]*ContextStats)
	}

	experts, err := readExperts(r)
	if err != nil {
		return nil, false, Full, err
	}
	for _, e := range experts {
		m.experts[e.ID] = e
		m.activeByContext[e.ContextKey] = e.ID
	}

	return m, enabled, mode, nil
}

func writeBool(w io.Writer, b bool) error {
	v := byte(0)
	if b {
		v = 1
	}
	_, err := w.Write([]byte{v})
	return err
}

func readBool(r io.ByteReader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func writePolicy(w io.Writer, p Policy) error {
	if _, err := w.Write([]byte{byte(p.ParentLearning)}); err != nil {
		return err
	}
	if err := wire.WriteU32(w, uint32(p.MaxChildren)); err != nil {
		return err
	}
	if err := wire.WriteF32(w, float32(p.ChildRewardScale)); err != nil {
		return err
	}
	if err := wire.WriteU32(w, uint32(p.EpisodeTrials)); err != nil {
		return err
	}
	if err := wire.WriteU32(w, uint32(p.ConsolidateTopK)); err != nil {
		return err
	}
	if err := wire.WriteF32(w, float32(p.ConsolidateDeltaMax)); err != nil {
		return err
	}
	if err := wire.WriteF32(w, float32(p.RewardShiftEMADeltaThreshold)); err != nil {
		return err
	}
	if err := wire.WriteF32(w, float32(p.PerformanceCollapseDropThreshold)); err != nil {
		return err
	}
	if err := wire.WriteF32(w, float32(p.PerformanceCollapseBaselineMin)); err != nil {
		return err
	}
	if err := wire.WriteU32(w, uint32(p.SpawnMinTrials)); err != nil {
		return err
	}
	if err := wire.WriteU32(w, uint32(p.CooldownTrials)); err != nil {
		return err
	}
	if err := wire.WriteF32(w, float32(p.PromoteRewardEMA)); err != nil {
		return err
	}
	if err := writeBool(w, p.AllowNested); err != nil {
		return err
	}
	return wire.WriteU32(w, uint32(p.MaxDepth))
}

func readPolicy(r io.Reader, version uint32) (Policy, error) {
	var p Policy

	mode, err := readByteReader(r)
	if err != nil {
		return p, err
	}
	p.ParentLearning = LearningMode(mode)

	u32 := func() (uint32, error) { return wire.ReadU32(r) }
	f32 := func() (float32, error) { return wire.ReadF32(r) }

	maxChildren, err := u32()
	if err != nil {
		return p, err
	}
	p.MaxChildren = int(maxChildren)

	childScale, err := f32()
	if err != nil {
		return p, err
	}
	p.ChildRewardScale = float64(childScale)

	episodeTrials, err := u32()
	if err != nil {
		return p, err
	}
	p.EpisodeTrials = int(episodeTrials)

	topk, err := u32()
	if err != nil {
		return p, err
	}
	p.ConsolidateTopK = int(topk)

	deltaMax, err := f32()
	if err != nil {
		return p, err
	}
	p.ConsolidateDeltaMax = float64(deltaMax)

	if version >= 3 {
		shift, err := f32()
		if err != nil {
			return p, err
		}
		p.RewardShiftEMADeltaThreshold = float64(shift)

		drop, err := f32()
		if err != nil {
			return p, err
		}
		p.PerformanceCollapseDropThreshold = float64(drop)

		baseline, err := f32()
		if err != nil {
			return p, err
		}
		p.PerformanceCollapseBaselineMin = float64(baseline)
	} else {
		p.RewardShiftEMADeltaThreshold = 0.55
		p.PerformanceCollapseDropThreshold = 0.65
		p.PerformanceCollapseBaselineMin = 0.25
	}

	spawnMin, err := u32()
	if err != nil {
		return p, err
	}
	p.SpawnMinTrials = int(spawnMin)

	cooldown, err := u32()
	if err != nil {
		return p, err
	}
	p.CooldownTrials = int(cooldown)

	promote, err := f32()
	if err != nil {
		return p, err
	}
	p.PromoteRewardEMA = float64(promote)

	allowNestedByte, err := readByteReader(r)
	if err != nil {
		return p, err
	}
	p.AllowNested = allowNestedByte != 0

	maxDepth, err := u32()
	if err != nil {
		return p, err
	}
	p.MaxDepth = int(maxDepth)

	return p, nil
}

func readByteReader(r io.Reader) (byte, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		return b[0], nil
	}
	return br.ReadByte()
}

func writeCooldowns(w io.Writer, cooldowns map[string]int) error {
	keys := make([]string, 0, len(cooldowns))
	for k := range cooldowns {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := wire.WriteU32(w, uint32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := wire.WriteString(w, k); err != nil {
			return err
		}
		if err := wire.WriteU32(w, uint32(cooldowns[k])); err != nil {
			return err
		}
	}
	return nil
}

func readCooldowns(r io.Reader) (map[string]int, error) {
	n, err := wire.ReadU32(r)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, n)
	for i := uint32(0); i < n; i++ {
		key, err := wire.ReadString(r)
		if err != nil {
			return nil, err
		}
		ticks, err := wire.ReadU32(r)
		if err != nil {
			return nil, err
		}
		out[key] = int(ticks)
	}
	return out, nil
}

func writeStats(w io.Writer, stats map[string]*ContextStats) error {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := wire.WriteU32(w, uint32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		st := stats[k]
		if err := wire.WriteString(w, k); err != nil {
			return err
		}
		if err := wire.WriteU64(w, st.FirstSeenTrial); err != nil {
			return err
		}
		if err := wire.WriteU64(w, st.TrialsSeen); err != nil {
			return err
		}
		if err := wire.WriteF32(w, float32(st.RewardFastEMA)); err != nil {
			return err
		}
		if err := wire.WriteF32(w, float32(st.RewardSlowEMA)); err != nil {
			return err
		}
		if err := wire.WriteF32(w, float32(st.BestSlowEMA)); err != nil {
			return err
		}
	}
	return nil
}

func readStats(r io.Reader) (map[string]*ContextStats, error) {
	n, err := wire.ReadU32(r)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*ContextStats, n)
	for i := uint32(0); i < n; i++ {
		key, err := wire.ReadString(r)
		if err != nil {
			return nil, err
		}
		firstSeen, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		trialsSeen, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		fast, err := wire.ReadF32(r)
		if err != nil {
			return nil, err
		}
		slow, err := wire.ReadF32(r)
		if err != nil {
			return nil, err
		}
		best, err := wire.ReadF32(r)
		if err != nil {
			return nil, err
		}
		out[key] = &ContextStats{
			FirstSeenTrial: firstSeen,
			TrialsSeen:     trialsSeen,
			RewardFastEMA:  float64(fast),
			RewardSlowEMA:  float64(slow),
			BestSlowEMA:    float64(best),
		}
	}
	return out, nil
}

func writeExperts(w io.Writer, experts map[uint32]*Expert) error {
	ids := make([]uint32, 0, len(experts))
	for id := range experts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if err := wire.WriteU32(w, uint32(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		e := experts[id]
		if err := writeExpert(w, e); err != nil {
			return err
		}
	}
	return nil
}

func writeExpert(w io.Writer, e *Expert) error {
	if err := wire.WriteU32(w, e.ID); err != nil {
		return err
	}
	if err := wire.WriteString(w, e.ContextKey); err != nil {
		return err
	}
	if err := wire.WriteU64(w, e.AgeSteps); err != nil {
		return err
	}
	if err := wire.WriteU32(w, uint32(e.CompletedTrials)); err != nil {
		return err
	}
	if err := wire.WriteU32(w, uint32(e.EpisodeTrials)); err != nil {
		return err
	}
	if err := wire.WriteF32(w, float32(e.RewardEMA)); err != nil {
		return err
	}

	childImage, err := e.ChildBrain.SaveImageBytes()
	if err != nil {
		return err
	}
	if err := writeLengthPrefixed(w, childImage); err != nil {
		return err
	}

	forkImage, err := e.ForkPoint.SaveImageBytes()
	if err != nil {
		return err
	}
	if err := writeLengthPrefixed(w, forkImage); err != nil {
		return err
	}

	var nestedBlob []byte
	if e.Nested != nil {
		nestedBlob, err = e.Nested.SaveState(true, Full)
		if err != nil {
			return err
		}
	}
	return writeLengthPrefixed(w, nestedBlob)
}

func readExperts(r io.Reader) ([]*Expert, error) {
	n, err := wire.ReadU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]*Expert, 0, n)
	for i := uint32(0); i < n; i++ {
		e, err := readExpert(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func readExpert(r io.Reader) (*Expert, error) {
	e := &Expert{}

	id, err := wire.ReadU32(r)
	if err != nil {
		return nil, err
	}
	e.ID = id

	contextKey, err := wire.ReadString(r)
	if err != nil {
		return nil, err
	}
	e.ContextKey = contextKey

	age, err := wire.ReadU64(r)
	if err != nil {
		return nil, err
	}
	e.AgeSteps = age

	completed, err := wire.ReadU32(r)
	if err != nil {
		return nil, err
	}
	e.CompletedTrials = int(completed)

	episode, err := wire.ReadU32(r)
	if err != nil {
		return nil, err
	}
	e.EpisodeTrials = int(episode)

	rewardEMA, err := wire.ReadF32(r)
	if err != nil {
		return nil, err
	}
	e.RewardEMA = float64(rewardEMA)

	childImage, err := readLengthPrefixed(r)
	if err != nil {
		return nil, err
	}
	e.ChildBrain, err = substrate.LoadImageBytes(childImage)
	if err != nil {
		return nil, err
	}

	forkImage, err := readLengthPrefixed(r)
	if err != nil {
		return nil, err
	}
	e.ForkPoint, err = substrate.LoadImageBytes(forkImage)
	if err != nil {
		return nil, err
	}

	nestedBlob, err := readLengthPrefixed(r)
	if err != nil {
		return nil, err
	}
	if len(nestedBlob) > 0 {
		nested, _, _, err := LoadState(nestedBlob)
		if err != nil {
			return nil, err
		}
		e.Nested = nested
	}

	return e, nil
}

func writeLengthPrefixed(w io.Writer, b []byte) error {
	if err := wire.WriteU32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readLengthPrefixed(r io.Reader) ([]byte, error) {
	n, err := wire.ReadU32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wire.ErrTruncated
	}
	return buf, nil
}
