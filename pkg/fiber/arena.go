package fiber

import "fmt"

// ID addresses a fiber in an engine's arena. IDs carry a generation, so an
// ID kept after its fiber was freed never resolves to a different fiber.
// The zero ID refers to no fiber.
type ID struct {
	index uint32 // slot + 1
	gen   uint32
}

// IsZero reports whether id refers to no fiber.
func (id ID) IsZero() bool { return id.index == 0 }

func (id ID) String() string {
	if id.IsZero() {
		return "fiber(nil)"
	}
	return fmt.Sprintf("fiber(%d.%d)", id.index, id.gen)
}

// arena owns every fiber of one engine.
type arena struct {
	slots []*Fiber
	gens  []uint32
	free  []uint32
	live  int
}

func (a *arena) alloc() *Fiber {
	var i uint32
	if n := len(a.free); n > 0 {
		i = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		i = uint32(len(a.slots))
		a.slots = append(a.slots, nil)
		a.gens = append(a.gens, 0)
	}
	f := &Fiber{id: ID{index: i + 1, gen: a.gens[i]}}
	a.slots[i] = f
	a.live++
	return f
}

// get returns the fiber for id, or nil if id is zero or was freed.
func (a *arena) get(id ID) *Fiber {
	if id.index == 0 {
		return nil
	}
	i := id.index - 1
	if int(i) >= len(a.slots) || a.gens[i] != id.gen {
		return nil
	}
	return a.slots[i]
}

func (a *arena) release(i uint32) {
	a.slots[i] = nil
	a.gens[i]++
	a.free = append(a.free, i)
	a.live--
}

// sweep frees every fiber not reachable from roots through child, sibling
// and alternate links. It returns the number of fibers freed.
func (a *arena) sweep(roots ...ID) int {
	marked := make([]bool, len(a.slots))
	var stack []ID
	for _, r := range roots {
		if !r.IsZero() {
			stack = append(stack, r)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f := a.get(id)
		if f == nil || marked[id.index-1] {
			continue
		}
		marked[id.index-1] = true
		for _, next := range [...]ID{f.child, f.sibling, f.alternate} {
			if !next.IsZero() {
				stack = append(stack, next)
			}
		}
	}

	freed := 0
	for i, f := range a.slots {
		if f != nil && !marked[i] {
			a.release(uint32(i))
			freed++
		}
	}
	return freed
}
