package alloc

const (
	// PoisonAlloc fills newly allocated memory when Config.Poison is set.
	PoisonAlloc byte = 0xCD

	// PoisonFree fills released memory when Config.Poison is set.
	PoisonFree byte = 0xDD
)

func (t *Tiny) poison(b *block, v byte) {
	if !t.conf.Poison || !t.r.Backed() {
		return
	}
	// Blocks always lie inside the region, so Fill cannot fail here.
	_ = t.r.Fill(b.addr, b.size, v)
}
