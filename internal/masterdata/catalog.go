// Package masterdata loads the static reference catalogs (publications,
// machines, downtime reasons, newsprint types and users) from a YAML seed.
package masterdata

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmcl/printrun/internal/domain/models"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedFile struct {
	Publications    []models.Publication    `yaml:"publications"`
	Machines        []models.Machine        `yaml:"machines"`
	DowntimeReasons []models.DowntimeReason `yaml:"downtime_reasons"`
	NewsprintTypes  []models.NewsprintType  `yaml:"newsprint_types"`
	Users           []models.User           `yaml:"users"`
}

// Catalog is read-only after Load and may be shared between goroutines.
type Catalog struct {
	publications    []models.Publication
	machines        []models.Machine
	downtimeReasons []models.DowntimeReason
	newsprintTypes  []models.NewsprintType
	users           []models.User

	publicationByID map[int64]models.Publication
	machineByID     map[int64]models.Machine
	reasonByID      map[int64]models.DowntimeReason
	newsprintByID   map[int64]models.NewsprintType
	userByID        map[int64]models.User
	userByEmail     map[string]models.User
}

// Load parses the catalog at path, or the embedded seed when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read master data %s: %w", path, err)
		}
		data = b
	}
	return Parse(data)
}

// Parse builds a catalog from raw YAML.
func Parse(data []byte) (*Catalog, error) {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode master data: %w", err)
	}

	c := &Catalog{
		publications:    seed.Publications,
		machines:        seed.Machines,
		downtimeReasons: seed.DowntimeReasons,
		newsprintTypes:  seed.NewsprintTypes,
		users:           seed.Users,
		publicationByID: make(map[int64]models.Publication, len(seed.Publications)),
		machineByID:     make(map[int64]models.Machine, len(seed.Machines)),
		reasonByID:      make(map[int64]models.DowntimeReason, len(seed.DowntimeReasons)),
		newsprintByID:   make(map[int64]models.NewsprintType, len(seed.NewsprintTypes)),
		userByID:        make(map[int64]models.User, len(seed.Users)),
		userByEmail:     make(map[string]models.User, len(seed.Users)),
	}

	for _, p := range seed.Publications {
		switch p.Type {
		case models.PublicationVK, models.PublicationOSP, models.PublicationNamma:
		default:
			return nil, fmt.Errorf("publication %d: unknown type %q", p.ID, p.Type)
		}
		if _, dup := c.publicationByID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate publication id %d", p.ID)
		}
		c.publicationByID[p.ID] = p
	}
	for _, m := range seed.Machines {
		if _, dup := c.machineByID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate machine id %d", m.ID)
		}
		c.machineByID[m.ID] = m
	}
	for _, r := range seed.DowntimeReasons {
		if _, dup := c.reasonByID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate downtime reason id %d", r.ID)
		}
		c.reasonByID[r.ID] = r
	}
	for _, n := range seed.NewsprintTypes {
		if _, dup := c.newsprintByID[n.ID]; dup {
			return nil, fmt.Errorf("duplicate newsprint id %d", n.ID)
		}
		c.newsprintByID[n.ID] = n
	}
	for _, u := range seed.Users {
		if u.Role != models.RoleUser && u.Role != models.RoleAdmin {
			return nil, fmt.Errorf("user %d: unknown role %q", u.ID, u.Role)
		}
		if _, dup := c.userByID[u.ID]; dup {
			return nil, fmt.Errorf("duplicate user id %d", u.ID)
		}
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if _, dup := c.userByEmail[email]; dup {
			return nil, fmt.Errorf("duplicate user email %q", u.Email)
		}
		c.userByID[u.ID] = u
		c.userByEmail[email] = u
	}

	return c, nil
}

// Publications returns the publications of the given type, or all of them when
// typ is empty. OSP also lists NAMMA editions.
func (c *Catalog) Publications(typ models.PublicationType) []models.Publication {
	out := make([]models.Publication, 0, len(c.publications))
	for _, p := range c.publications {
		switch {
		case typ == "":
		case p.Type == typ:
		case typ == models.PublicationOSP && p.Type == models.PublicationNamma:
		default:
			continue
		}
		out = append(out, p)
	}
	return out
}

func (c *Catalog) Publication(id int64) (models.Publication, bool) {
	p, ok := c.publicationByID[id]
	return p, ok
}

func (c *Catalog) Machines() []models.Machine {
	return append([]models.Machine(nil), c.machines...)
}

func (c *Catalog) Machine(id int64) (models.Machine, bool) {
	m, ok := c.machineByID[id]
	return m, ok
}

func (c *Catalog) DowntimeReasons() []models.DowntimeReason {
	return append([]models.DowntimeReason(nil), c.downtimeReasons...)
}

func (c *Catalog) DowntimeReason(id int64) (models.DowntimeReason, bool) {
	r, ok := c.reasonByID[id]
	return r, ok
}

func (c *Catalog) NewsprintTypes() []models.NewsprintType {
	return append([]models.NewsprintType(nil), c.newsprintTypes...)
}

func (c *Catalog) Newsprint(id int64) (models.NewsprintType, bool) {
	n, ok := c.newsprintByID[id]
	return n, ok
}

func (c *Catalog) Users() []models.User {
	return append([]models.User(nil), c.users...)
}

func (c *Catalog) User(id int64) (models.User, bool) {
	u, ok := c.userByID[id]
	return u, ok
}

// UserByEmail matches case-insensitively.
func (c *Catalog) UserByEmail(email string) (models.User, bool) {
	u, ok := c.userByEmail[strings.ToLower(strings.TrimSpace(email))]
	return u, ok
}

// Locations returns the distinct user locations, sorted.
func (c *Catalog) Locations() []string {
	seen := make(map[string]struct{}, len(c.users))
	out := make([]string, 0, len(c.users))
	for _, u := range c.users {
		if u.Location == "" {
			continue
		}
		if _, ok := seen[u.Location]; ok {
			continue
		}
		seen[u.Location] = struct{}{}
		out = append(out, u.Location)
	}
	sort.Strings(out)
	return out
}

// UserIDsAtLocation returns the ids of users based at location. The result is
// never nil so callers can tell "nobody there" from "no filter".
func (c *Catalog) UserIDsAtLocation(location string) []int64 {
	ids := []int64{}
	for _, u := range c.users {
		if strings.EqualFold(u.Location, strings.TrimSpace(location)) {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

// PublicationName resolves a record's display name, falling back to the custom
// name for one-time publications.
func (c *Catalog) PublicationName(r models.ProductionRecord) string {
	if r.PublicationID != nil {
		if p, ok := c.publicationByID[*r.PublicationID]; ok {
			return p.Name
		}
		return "Unknown"
	}
	if r.CustomPublicationName != nil {
		return *r.CustomPublicationName
	}
	return "Unknown"
}

// MachineName returns "Unknown" for ids outside the catalog.
func (c *Catalog) MachineName(id int64) string {
	if m, ok := c.machineByID[id]; ok {
		return m.Name
	}
	return "Unknown"
}

func (c *Catalog) NewsprintName(id int64) string {
	if n, ok := c.newsprintByID[id]; ok {
		return n.Name
	}
	return "Unknown"
}
