// substrate/diagnostics.go
package substrate

// Diagnostics summarizes one step's structural and activity statistics for
// observers (hosts, dashboards, tests) that don't want to walk unit/graph
// state directly.
type Diagnostics struct {
	UnitCount       int
	ConnectionCount int
	PrunedLastStep  int
	BirthsLastStep  int
	AvgAmp          float64
	AvgWeight       float64
	MemoryBytes     int
}

// CausalStats mirrors causal.Stats for the substrate-facing API, so callers
// never need to import the causal package directly.
type CausalStats struct {
	BaseSymbols             int
	Edges                   int
	LastDirectedEdgeUpdates int
	LastCooccurEdgeUpdates  int
}

// UnitPlotPoint is a lightweight per-unit snapshot for visualization hosts.
type UnitPlotPoint struct {
	ID            int
	Amp01         float64 // amplitude remapped to [0,1]
	Phase         float64
	Salience01    float64
	RelAge        float64 // (age_steps - birth_tick) / age_steps, 0 if age_steps == 0
	IsSensorMember bool
	IsGroupMember  bool
	IsReserved     bool
}

// Diagnostics returns the most recently recorded step diagnostics.
func (s *Substrate) Diagnostics() Diagnostics {
	d := s.diag
	d.UnitCount = len(s.units)
	d.ConnectionCount = s.graph.connectionCount()
	d.MemoryBytes = s.estimateMemoryBytes()
	return d
}

func (s *Substrate) estimateMemoryBytes() int {
	const unitBytes = 8 * 5
	const edgeBytes = 4 + 8 + 1
	return len(s.units)*unitBytes + s.graph.connectionCount()*edgeBytes
}

// UnitPlotPoints returns up to n evenly-strided UnitPlotPoint snapshots.
func (s *Substrate) UnitPlotPoints(n int) []UnitPlotPoint {
	if n <= 0 || len(s.units) == 0 {
		return nil
	}
	if n > len(s.units) {
		n = len(s.units)
	}
	stride := len(s.units) / n
	if stride == 0 {
		stride = 1
	}
	out := make([]UnitPlotPoint, 0, n)
	for i := 0; i < len(s.units) && len(out) < n; i += stride {
		u := s.units[i]
		rel := 0.0
		if s.ageSteps > 0 {
			rel = float64(s.ageSteps-u.BirthTick) / float64(s.ageSteps)
		}
		out = append(out, UnitPlotPoint{
			ID:            i,
			Amp01:         (clampAmplitude(u.Amplitude) + 2) / 4,
			Phase:         u.Phase,
			Salience01:    clamp01((clampAmplitude(u.Amplitude) + 2) / 4),
			RelAge:        rel,
			IsSensorMember: s.isMemberOfKind(uint32(i), sensorGroupKind),
			IsGroupMember:  s.isMemberOfKind(uint32(i), sensorGroupKind) || s.isMemberOfKind(uint32(i), actionGroupKind),
			IsReserved:     u.IsReserved,
		})
	}
	return out
}

func (s *Substrate) isMemberOfKind(id uint32, kind groupKind) bool {
	for _, g := range s.groups.byName {
		if g.Kind != kind {
			continue
		}
		if int(id) >= g.Start && int(id) < g.Start+g.Width {
			return true
		}
	}
	return false
}

// Neighbors returns the (target, weight) out-edges of unitID.
func (s *Substrate) Neighbors(unitID int) ([]uint32, []float64) {
	return s.graph.neighbors(unitID)
}

// GroupInfo is a read-only summary of one bound sensor/action group, for
// callers (inspection tooling, tests) that shouldn't reach into groupTable.
type GroupInfo struct {
	Name  string
	Kind  string
	Start int
	Width int
}

// Groups returns every bound group in creation order.
func (s *Substrate) Groups() []GroupInfo {
	out := make([]GroupInfo, 0, len(s.groups.order))
	for _, g := range s.groups.order {
		out = append(out, GroupInfo{Name: g.Name, Kind: kindName(g.Kind), Start: g.Start, Width: g.Width})
	}
	return out
}
