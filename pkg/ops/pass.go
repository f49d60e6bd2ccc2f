package ops

// Pass is a run of operations the machine performs in one carriage sweep.
//
// A transfer pass holds consecutive transfers sharing source bed, target bed
// and needle offset; every other operation is a pass of its own.
type Pass struct {
	Ops []Op

	// Transfer passes only.
	FromBed string // "f", "fs", "b" or "bs"
	ToBed   string
	Offset  int // to.Index - from.Index
}

// IsTransfer reports whether the pass is made of transfers.
func (p Pass) IsTransfer() bool {
	return len(p.Ops) > 0 && p.Ops[0].Kind() == KindXfer
}

// Passes splits ops into passes greedily without reordering them.
func Passes(ops []Op) []Pass {
	var passes []Pass
	for _, op := range ops {
		x, ok := op.(Xfer)
		if !ok {
			passes = append(passes, Pass{Ops: []Op{op}})
			continue
		}
		if n := len(passes); n > 0 {
			last := &passes[n-1]
			if last.IsTransfer() && last.FromBed == x.From.BedName() && last.ToBed == x.To.BedName() && last.Offset == x.Offset() {
				last.Ops = append(last.Ops, op)
				continue
			}
		}
		passes = append(passes, Pass{
			Ops:     []Op{op},
			FromBed: x.From.BedName(),
			ToBed:   x.To.BedName(),
			Offset:  x.Offset(),
		})
	}
	return passes
}
