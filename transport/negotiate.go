package transport

import (
	"bytes"

	"github.com/libgit2-go/transport/capability"
	"github.com/libgit2-go/transport/pktline"
	"github.com/libgit2-go/transport/revwalk"
)

// haveBatchSize is the number of buffered `have` lines between negotiation
// checkpoints (spec.md §4.4 step 3, §5).
const haveBatchSize = 20

// NegotiateFetch implements spec.md §4.4: emit want lines, walk the local
// repository's history in time-descending order buffering have lines, and
// drain ACK/NAK until a common base is found or the walk is exhausted.
func (t *SmartTransport) NegotiateFetch(repo NegotiationRepository, wants []WireRef) error {
	if t.state != Connected {
		return NewProtocolError("negotiate_fetch: transport is not connected")
	}

	wantBlock := t.buildWantBlock(wants)

	stream, err := t.openNegotiationStream()
	if err != nil {
		return err
	}
	t.stream = stream

	var common []*Pkt
	var burst bytes.Buffer
	haveCount := 0
	burstsSent := 0

	send := func(trailer []byte) error {
		var out bytes.Buffer
		if burstsSent == 0 {
			out.Write(wantBlock)
		} else if t.rpc {
			s, err := t.openNegotiationStream()
			if err != nil {
				return err
			}
			t.stream = s
			out.Write(wantBlock)
			for _, c := range common {
				pktline.EncodeString(&out, "have "+c.OID+"\n")
			}
		}
		out.Write(trailer)
		pktline.WriteFlush(&out)
		if _, err := t.stream.Write(out.Bytes()); err != nil {
			return WrapNetworkError(err, "sending negotiation burst")
		}
		burstsSent++
		return nil
	}

	walker := revwalk.NewWalker(repo)
	tips, err := repo.LocalTips()
	if err != nil {
		return err
	}
	for _, tip := range tips {
		if err := walker.Push(tip); err != nil {
			return err
		}
	}

	exhausted := false
walkLoop:
	for {
		h, err := walker.Next()
		if err == revwalk.ErrStop {
			exhausted = true
			break walkLoop
		}
		if err != nil {
			return err
		}

		pktline.EncodeString(&burst, "have "+h.String()+"\n")
		haveCount++

		if haveCount%haveBatchSize != 0 {
			continue
		}

		if t.isCancelled() {
			return ErrUserAbort
		}
		if err := send(burst.Bytes()); err != nil {
			return err
		}
		burst.Reset()

		if t.caps.MultiAck {
			acked, err := t.storeCommon()
			if err != nil {
				return err
			}
			common = append(common, acked...)
			if len(common) > 0 {
				break walkLoop
			}
		} else {
			pkt, err := t.nextFrame(false)
			if err != nil {
				return err
			}
			switch pkt.Type {
			case PktAck:
				common = append(common, pkt)
				break walkLoop
			case PktNak:
				// no common base yet; keep walking
			default:
				return NewProtocolError("unexpected frame during negotiation: %v", pkt.Type)
			}
		}
	}
	_ = exhausted

	// Step 5: after the walk, a stateless carrier that already found a
	// common base must resend the full want+have history before done,
	// since the server retains no state between requests.
	if t.rpc && len(common) > 0 {
		if err := send(burst.Bytes()); err != nil {
			return err
		}
		burst.Reset()
	}

	// Step 6: emit done, re-checking cancellation first.
	pktline.EncodeString(&burst, "done\n")
	if t.isCancelled() {
		return ErrUserAbort
	}
	if err := send(burst.Bytes()); err != nil {
		return err
	}

	// Step 7: drain the final ACK/NAK.
	if !t.caps.MultiAck {
		pkt, err := t.nextFrame(false)
		if err != nil {
			return err
		}
		if pkt.Type != PktAck && pkt.Type != PktNak {
			return NewProtocolError("unexpected final frame: %v", pkt.Type)
		}
		return nil
	}

	for {
		pkt, err := t.nextFrame(false)
		if err != nil {
			return err
		}
		switch {
		case pkt.Type == PktNak:
			return nil
		case pkt.Type == PktAck && pkt.Status != AckContinue:
			return nil
		case pkt.Type == PktAck:
			continue
		default:
			return NewProtocolError("unexpected frame draining final ACK: %v", pkt.Type)
		}
	}
}

// storeCommon drains ACK frames into the common vector, stopping — via
// pushBack — at the first non-ACK frame, as spec.md §4.4 step 3 requires.
func (t *SmartTransport) storeCommon() ([]*Pkt, error) {
	var acks []*Pkt
	for {
		pkt, err := t.nextFrame(false)
		if err != nil {
			return acks, err
		}
		if pkt.Type != PktAck {
			t.pushBack(pkt)
			return acks, nil
		}
		acks = append(acks, pkt)
	}
}

// buildWantBlock formats the initial want lines, attaching the
// server/client capability intersection only to the first (spec.md §4.4
// step 1).
func (t *SmartTransport) buildWantBlock(wants []WireRef) []byte {
	capStr := capability.Intersect(t.caps, capability.Supported)

	var buf bytes.Buffer
	for i, w := range wants {
		line := "want " + w.OID
		if i == 0 && capStr != "" {
			line += " " + capStr
		}
		line += "\n"
		pktline.EncodeString(&buf, line)
	}
	return buf.Bytes()
}

// openNegotiationStream returns the stream negotiation should write to: the
// same persistent stream Connect opened for a non-RPC carrier, or a fresh
// request/response transaction for an RPC one (spec.md §4.6).
//
// Opening a genuinely new transaction invalidates any bytes buffered, or
// peeked via pushBack, from whatever stream preceded it: an rpc carrier's
// response bytes never carry meaning across requests, so a frame peeked
// out of the prior response must not be replayed as if it came from the
// new one.
func (t *SmartTransport) openNegotiationStream() (Stream, error) {
	if !t.rpc && t.stream != nil {
		return t.stream, nil
	}
	s, err := t.sub.Action(t.url, UploadPack)
	if err != nil {
		return nil, WrapNetworkError(err, "opening upload-pack stream")
	}
	t.buf = nil
	t.pending = nil
	return s, nil
}
