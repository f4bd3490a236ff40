package sequence

// readCommand resolves the descriptor of the next event. A data byte in
// status position reuses the running status and is left for the arguments.
func (t *Track) readCommand(c *cursor) (Descriptor, error) {
	b, err := c.peek()
	if err != nil {
		return Descriptor{}, err
	}

	cmd := b
	if b < 0x80 {
		if t.RunningStatus == 0 {
			return Descriptor{}, ErrNoRunningStatus
		}
		cmd = t.RunningStatus
	} else {
		c.off++
		if b < systemThreshold {
			t.Channel = int(b & 0x0F)
			cmd = b & 0xF0
		}
		t.RunningStatus = cmd
	}

	code := uint16(cmd)
	if extendable(cmd) {
		second, err := c.readByte()
		if err != nil {
			return Descriptor{}, err
		}
		code = code<<8 | uint16(second)
	}

	if d, ok := registry[code]; ok {
		return d, nil
	}
	if code > 0xFF {
		// not a known refinement: the second byte is the first argument
		c.unread()
		return Lookup(code >> 8), nil
	}
	return unknownDescriptor(code), nil
}

// writeCommand emits the status byte, and the refinement byte for two-byte
// codes. Running status is never used for output.
func (t *Track) writeCommand(w *writer, d Descriptor, channel int) {
	status := d.Primary()
	if d.ChannelVoice() && channel > 0 {
		status |= byte(channel & 0x0F)
	}
	w.writeByte(status)
	if d.Extended() {
		w.writeByte(byte(d.Code))
	}

	t.RunningStatus = d.Primary()
	if d.ChannelVoice() {
		t.Channel = channel
	}
}
