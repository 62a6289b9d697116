package grid

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"powersimdata/internal/model"
)

const (
	SourceTAMU = "usa_tamu"

	EngineREISE   = "REISE"
	EngineREISEJL = "REISE.jl"
)

var (
	ErrUnknownSource        = errors.New("source not implemented")
	ErrUnknownEngine        = errors.New("unknown engine")
	ErrEngineNotImplemented = errors.New("engine not implemented")
	ErrUnknownField         = errors.New("unknown grid field")
)

// Transform names, reachable through Lookup without a deprecation warning.
const (
	TransformBus2Sub    = "bus2sub"
	TransformZone2ID    = "zone2id"
	TransformID2Zone    = "id2zone"
	TransformID2Type    = "id2type"
	TransformType2ID    = "type2id"
	TransformType2Color = "type2color"
)

var TransformNames = []string{
	TransformBus2Sub, TransformZone2ID, TransformID2Zone,
	TransformID2Type, TransformType2ID, TransformType2Color,
}

const deprecationMessage = "Grid property access is moving to dictionary indexing, i.e. grid['branch'] consistent with REISE.jl"

// warned records properties already reported by the deprecation shim.
var warned sync.Map

// Options selects how a Grid is built.
type Options struct {
	Interconnect []string
	// Source is "usa_tamu" or the path of a .mat case file.
	Source string
	// Engine is only consulted for .mat sources.
	Engine string
	// DataDir holds the TAMU CSV tables.
	DataDir string
}

func (o Options) withDefaults() Options {
	if o.Source == "" {
		o.Source = SourceTAMU
	}
	if o.Engine == "" {
		o.Engine = EngineREISE
	}
	return o
}

// key identifies the grid the options resolve to.
func (o Options) key() (string, error) {
	o = o.withDefaults()
	ic, err := NormalizeInterconnect(o.Interconnect)
	if err != nil {
		return "", err
	}
	return strings.Join([]string{strings.Join(ic, "+"), o.Source, o.Engine, o.DataDir}, "|"), nil
}

// Transform holds the conversion helpers of a Grid.
type Transform struct {
	Bus2Sub    *model.Table
	Zone2ID    map[string]int64
	ID2Zone    map[int64]string
	ID2Type    map[int]string
	Type2ID    map[string]int
	Type2Color map[string]string
}

// Grid is a power network in the uniform table schema.
type Grid struct {
	DataLoc      string
	Interconnect []string

	fields    map[string]*Field
	transform Transform
}

// network is what a source reader hands to the Grid.
type network struct {
	dataLoc      string
	interconnect []string
	tables       map[string]*model.Table
	zone2id      map[string]int64
}

// New builds a grid from the configured source.
func New(opts Options) (*Grid, error) {
	opts = opts.withDefaults()
	var (
		net *network
		err error
	)
	switch {
	case opts.Source == SourceTAMU:
		net, err = readTAMU(opts.DataDir, opts.Interconnect)
	case strings.EqualFold(filepath.Ext(opts.Source), ".mat"):
		switch opts.Engine {
		case EngineREISE:
			net, err = readREISE(opts.Source, opts.DataDir, opts.Interconnect)
		case EngineREISEJL:
			return nil, errors.Wrapf(ErrEngineNotImplemented, "%s", opts.Engine)
		default:
			return nil, errors.Wrapf(ErrUnknownEngine, "%s", opts.Engine)
		}
	default:
		return nil, errors.Wrapf(ErrUnknownSource, "%s", opts.Source)
	}
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"source":       opts.Source,
		"interconnect": InterconnectName(net.interconnect),
	}).Debug("Grid loaded")
	return fromNetwork(net)
}

// FromTables assembles a grid from in-memory tables. Missing fields are
// empty; zone2id may be nil.
func FromTables(interconnect []string, tables map[string]*model.Table, zone2id map[string]int64) (*Grid, error) {
	ic, err := NormalizeInterconnect(interconnect)
	if err != nil {
		return nil, err
	}
	for name := range tables {
		if Columns(name) == nil {
			return nil, errors.Wrapf(ErrUnknownField, "%q", name)
		}
	}
	if zone2id == nil {
		zone2id = map[string]int64{}
	}
	return fromNetwork(&network{interconnect: ic, tables: tables, zone2id: zone2id})
}

func fromNetwork(n *network) (*Grid, error) {
	g := &Grid{
		DataLoc:      n.dataLoc,
		Interconnect: n.interconnect,
		fields:       make(map[string]*Field, len(FieldNames)),
	}
	for _, name := range FieldNames {
		f, err := NewField(name, n.tables[name])
		if err != nil {
			return nil, err
		}
		g.fields[name] = f
	}
	bus2sub := n.tables[FieldBus2Sub]
	if bus2sub == nil {
		bus2sub = NewEmpty(FieldBus2Sub)
	}
	id2zone := make(map[int64]string, len(n.zone2id))
	for name, id := range n.zone2id {
		id2zone[id] = name
	}
	g.transform = Transform{
		Bus2Sub:    bus2sub,
		Zone2ID:    n.zone2id,
		ID2Zone:    id2zone,
		ID2Type:    model.ID2Type(),
		Type2ID:    model.Type2ID(),
		Type2Color: model.Type2Color(),
	}
	return g, nil
}

// Get returns a field table by name, like grid["plant"].
func (g *Grid) Get(name string) (*model.Table, error) {
	f, ok := g.fields[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownField, "%q", name)
	}
	return f.Data, nil
}

// Field returns the named field wrapper.
func (g *Grid) Field(name string) (*Field, bool) {
	f, ok := g.fields[name]
	return f, ok
}

// Fields returns the field names in sorted order.
func (g *Grid) Fields() []string {
	out := make([]string, 0, len(g.fields))
	for name := range g.fields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves a property the old attribute way. Transforms are
// returned directly; field names return the table after a deprecation
// warning, logged once per property.
func (g *Grid) Lookup(prop string) (any, error) {
	switch prop {
	case TransformBus2Sub:
		return g.transform.Bus2Sub, nil
	case TransformZone2ID:
		return g.transform.Zone2ID, nil
	case TransformID2Zone:
		return g.transform.ID2Zone, nil
	case TransformID2Type:
		return g.transform.ID2Type, nil
	case TransformType2ID:
		return g.transform.Type2ID, nil
	case TransformType2Color:
		return g.transform.Type2Color, nil
	}
	warnDeprecated(prop)
	return g.Get(prop)
}

func warnDeprecated(prop string) {
	if _, seen := warned.LoadOrStore(prop, struct{}{}); seen {
		return
	}
	log.WithField("property", prop).Warn(deprecationMessage)
}

func (g *Grid) attr(name string) *model.Table {
	warnDeprecated(name)
	return g.fields[name].Data
}

func (g *Grid) Plant() *model.Table   { return g.attr(FieldPlant) }
func (g *Grid) Bus() *model.Table     { return g.attr(FieldBus) }
func (g *Grid) Branch() *model.Table  { return g.attr(FieldBranch) }
func (g *Grid) DCLine() *model.Table  { return g.attr(FieldDCLine) }
func (g *Grid) GenCost() *model.Table { return g.attr(FieldGenCost) }
func (g *Grid) Sub() *model.Table     { return g.attr(FieldSub) }
func (g *Grid) Storage() *model.Table { return g.attr(FieldStorage) }

func (g *Grid) Bus2Sub() *model.Table         { return g.transform.Bus2Sub }
func (g *Grid) Zone2ID() map[string]int64     { return g.transform.Zone2ID }
func (g *Grid) ID2Zone() map[int64]string     { return g.transform.ID2Zone }
func (g *Grid) ID2Type() map[int]string       { return g.transform.ID2Type }
func (g *Grid) Type2ID() map[string]int       { return g.transform.Type2ID }
func (g *Grid) Type2Color() map[string]string { return g.transform.Type2Color }

// Clone returns a deep copy; changes to it never reach g.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		DataLoc:      g.DataLoc,
		Interconnect: append([]string(nil), g.Interconnect...),
		fields:       make(map[string]*Field, len(g.fields)),
	}
	for name, f := range g.fields {
		out.fields[name] = f.clone()
	}
	zone2id := make(map[string]int64, len(g.transform.Zone2ID))
	for k, v := range g.transform.Zone2ID {
		zone2id[k] = v
	}
	id2zone := make(map[int64]string, len(g.transform.ID2Zone))
	for k, v := range g.transform.ID2Zone {
		id2zone[k] = v
	}
	out.transform = Transform{
		Bus2Sub:    g.transform.Bus2Sub.Clone(),
		Zone2ID:    zone2id,
		ID2Zone:    id2zone,
		ID2Type:    model.ID2Type(),
		Type2ID:    model.Type2ID(),
		Type2Color: model.Type2Color(),
	}
	return out
}

// PlantsOfType returns plant ids of a generator type, optionally restricted
// to a set of load zone names.
func (g *Grid) PlantsOfType(gentype string, zones ...string) []int64 {
	plant := g.fields[FieldPlant].Data
	inZone := make(map[string]struct{}, len(zones))
	for _, z := range zones {
		inZone[z] = struct{}{}
	}
	var ids []int64
	for row := 0; row < plant.Len(); row++ {
		if plant.String("type", row) != gentype {
			continue
		}
		if len(zones) > 0 {
			if _, ok := inZone[plant.String("zone_name", row)]; !ok {
				continue
			}
		}
		ids = append(ids, plant.ID(row))
	}
	return ids
}
