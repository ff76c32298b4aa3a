package transport

import "io"

// progressThreshold is the byte-count callback's firing granularity
// (spec.md §4.5, §8 law 6): 100 KiB.
const progressThreshold = 102400

// DownloadPack implements spec.md §4.5: stream the pack (side-band framed
// or raw, depending on negotiated capabilities) into idx, firing the
// byte-count callback at least once per progressThreshold bytes received.
func (t *SmartTransport) DownloadPack(idx PackSink) error {
	if t.state != Connected {
		return NewProtocolError("download_pack: transport is not connected")
	}

	if t.caps.SideBand || t.caps.SideBand64k {
		return t.downloadSideband(idx)
	}
	return t.downloadPlain(idx)
}

func (t *SmartTransport) downloadPlain(idx PackSink) error {
	var lastFired int64
	for {
		if t.isCancelled() {
			return ErrUserAbort
		}

		if len(t.buf) > 0 {
			n, err := idx.Write(t.buf)
			if err != nil {
				return WrapNetworkError(err, "writing pack data")
			}
			t.buf = t.buf[n:]
			t.maybeFireProgress(idx, &lastFired)
		}

		if err := t.refill(); err != nil {
			switch err {
			case io.EOF:
				return idx.Finalize()
			case ErrUserAbort:
				return ErrUserAbort
			default:
				return WrapNetworkError(err, "reading pack data")
			}
		}
	}
}

func (t *SmartTransport) downloadSideband(idx PackSink) error {
	var lastFired int64
	for {
		if t.isCancelled() {
			return ErrUserAbort
		}

		pkt, err := t.nextFrame(true)
		if err != nil {
			return err
		}

		switch pkt.Type {
		case PktData:
			if _, err := idx.Write(pkt.Data); err != nil {
				return WrapNetworkError(err, "writing pack data")
			}
			t.maybeFireProgress(idx, &lastFired)
		case PktProgress:
			if t.cb.Progress != nil {
				t.cb.Progress(string(pkt.Data))
			}
		case PktErr:
			return NewNetworkError("%s", pkt.Message)
		case PktFlush:
			return idx.Finalize()
		default:
			return NewProtocolError("unexpected frame in download_pack: %v", pkt.Type)
		}
	}
}

func (t *SmartTransport) maybeFireProgress(idx PackSink, lastFired *int64) {
	if t.cb.ByteCount == nil {
		return
	}
	received := idx.Stats().ReceivedBytes
	for received-*lastFired >= progressThreshold {
		*lastFired += progressThreshold
		t.cb.ByteCount(received)
	}
}
