package engine

import "github.com/fauzi-lee/se-take-home-assignment/internal/model"

// unitPool holds the processing units in the order they were added.
type unitPool struct {
	units []*model.Unit
}

// add appends a new idle unit.
func (p *unitPool) add(id int64) *model.Unit {
	u := &model.Unit{ID: id, State: model.UnitIdle}
	p.units = append(p.units, u)
	return u
}

// last returns the most recently added unit without removing it.
func (p *unitPool) last() *model.Unit {
	if len(p.units) == 0 {
		return nil
	}
	return p.units[len(p.units)-1]
}

// removeLast pops the most recently added unit.
func (p *unitPool) removeLast() *model.Unit {
	u := p.last()
	if u != nil {
		p.units = p.units[:len(p.units)-1]
	}
	return u
}

func (p *unitPool) counts() (idle, busy int) {
	for _, u := range p.units {
		if u.Idle() {
			idle++
		} else {
			busy++
		}
	}
	return idle, busy
}

func (p *unitPool) clear() {
	p.units = nil
}
