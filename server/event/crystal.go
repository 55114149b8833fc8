package event

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// EntityTypePlayer is the type identifier of player entities.
	EntityTypePlayer = "minecraft:player"
	// EntityTypeEndCrystal is the type identifier of end crystal entities.
	EntityTypeEndCrystal = "minecraft:ender_crystal"
)

// Entity is the subset of a host entity that damage and death events expose.
type Entity interface {
	UUID() uuid.UUID
	Name() string
	Type() string
}

// Damage is dispatched when an entity is hurt by another entity. Source is the
// entity that dealt the damage directly, Attacker the entity responsible for it,
// which may be the same entity or nil.
type Damage struct {
	Cancellation
	Victim   Entity
	Source   Entity
	Attacker Entity
	Amount   float64
}

// Death is dispatched when a player dies.
type Death struct {
	Victim        Entity
	Message       string
	KeepInventory bool
}

// CrystalKill is dispatched when a player is killed by an end crystal that was
// detonated by another player. It wraps the damage and death events that led to
// the kill and delegates to them, so changes made through a CrystalKill are
// visible to the handlers of the death event that run after it.
type CrystalKill struct {
	killer  Entity
	crystal Entity
	damage  *Damage
	death   *Death
}

// Killer returns the player that detonated the crystal.
func (k *CrystalKill) Killer() Entity { return k.killer }

// Victim returns the player that was killed.
func (k *CrystalKill) Victim() Entity { return k.death.Victim }

// Crystal returns the end crystal that dealt the final damage.
func (k *CrystalKill) Crystal() Entity { return k.crystal }

// Damage returns the amount of damage dealt by the crystal.
func (k *CrystalKill) Damage() float64 { return k.damage.Amount }

// DeathMessage returns the death message that will be broadcast.
func (k *CrystalKill) DeathMessage() string { return k.death.Message }

// SetDeathMessage changes the death message that will be broadcast.
func (k *CrystalKill) SetDeathMessage(message string) { k.death.Message = message }

// KeepInventory reports if the victim keeps their inventory.
func (k *CrystalKill) KeepInventory() bool { return k.death.KeepInventory }

// SetKeepInventory changes if the victim keeps their inventory.
func (k *CrystalKill) SetKeepInventory(keep bool) { k.death.KeepInventory = keep }

// DamageEvent returns the underlying damage event.
func (k *CrystalKill) DamageEvent() *Damage { return k.damage }

// DeathEvent returns the underlying death event.
func (k *CrystalKill) DeathEvent() *Death { return k.death }

type crystalHit struct {
	killer  Entity
	crystal Entity
	damage  *Damage
	at      time.Time
}

// CrystalTracker correlates crystal damage with the death that follows it and
// dispatches a CrystalKill on the bus it is attached to.
type CrystalTracker struct {
	// Window is how long after the crystal hit a death is still attributed to
	// it. Zero means one second.
	Window time.Duration
	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time

	mu   sync.Mutex
	hits map[uuid.UUID]crystalHit
}

// Attach registers the tracker on bus under owner and returns a function that
// detaches it again.
func (c *CrystalTracker) Attach(bus *Bus, owner string) func() {
	damage, _ := New[*Damage]().
		Priority(PriorityMonitor).
		IgnoreCancelled(true).
		Action(c.observeDamage).
		Build()
	death, _ := New[*Death]().
		Priority(PriorityLowest).
		Action(func(d *Death) { c.observeDeath(bus, d) }).
		Build()

	removeDamage := damage.Register(bus, owner)
	removeDeath := death.Register(bus, owner)
	return func() {
		removeDamage()
		removeDeath()
	}
}

func (c *CrystalTracker) observeDamage(d *Damage) {
	if d.Victim == nil || d.Victim.Type() != EntityTypePlayer {
		return
	}
	if d.Source == nil || d.Source.Type() != EntityTypeEndCrystal {
		return
	}
	if d.Attacker == nil || d.Attacker.Type() != EntityTypePlayer {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hits == nil {
		c.hits = make(map[uuid.UUID]crystalHit)
	}
	c.hits[d.Victim.UUID()] = crystalHit{killer: d.Attacker, crystal: d.Source, damage: d, at: c.now()}
}

func (c *CrystalTracker) observeDeath(bus *Bus, d *Death) {
	if d.Victim == nil {
		return
	}
	c.mu.Lock()
	hit, ok := c.hits[d.Victim.UUID()]
	delete(c.hits, d.Victim.UUID())
	c.mu.Unlock()
	if !ok || c.now().Sub(hit.at) > c.window() {
		return
	}
	bus.Dispatch(&CrystalKill{killer: hit.killer, crystal: hit.crystal, damage: hit.damage, death: d})
}

func (c *CrystalTracker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *CrystalTracker) window() time.Duration {
	if c.Window <= 0 {
		return time.Second
	}
	return c.Window
}
