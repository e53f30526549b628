package packet

import "go.uber.org/atomic"

// Producer makes fresh packets on the originating side of the protocol,
// receivers get their packets from Decode instead.
// It is safe for concurrent use, ids stay unique and gapless.
type Producer struct {
	nextID atomic.Uint64
}

func NewProducer() *Producer {
	return &Producer{}
}

// MakePacket returns a packet stamped with the next id and the current
// Version, all other fields are zero.
func (p *Producer) MakePacket() *Packet {
	id := p.nextID.Inc() - 1
	return &Packet{
		Header: Header{
			PacketID:      id,
			PacketVersion: Version,
		},
	}
}

// Next returns the id the next MakePacket will use.
func (p *Producer) Next() uint64 {
	return p.nextID.Load()
}
