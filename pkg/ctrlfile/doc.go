/*
Package ctrlfile delivers DTMF sequences to the control file of a radio-link
service.

The control file is a FIFO or PTY slave created by the service (SvxLink
exposes one at /dev/shm/dtmf_ctrl). The Writer never creates or removes it.
A Send performs exactly one delivery:

  - stat the path, failing with domain.ErrPathNotFound when it is absent;
  - open it write-only without blocking;
  - if no reader is attached yet, open it again in blocking mode, which waits
    until the service opens its end (or the context is done);
  - write the raw bytes of the sequence;
  - on a PTY, wait for the terminal output queue to drain (tcdrain);
  - pause briefly so the reader can consume the bytes, then close the
    descriptor, ignoring close errors.

Failures are returned as *domain.SendError values carrying the failure kind.
*/
package ctrlfile
