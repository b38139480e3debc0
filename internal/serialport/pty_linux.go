//go:build linux

package serialport

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// OpenPTY allocates a pseudo terminal pair and serves the master side. The
// slave is kept open so reads do not fail while no client is attached. When
// link is set, a symlink to the slave path is created there and removed on
// Close.
func OpenPTY(baud int, readTimeout time.Duration, link string) (*Port, error) {
	mfd, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/ptmx: %w", err)
	}
	ok := false
	defer func() {
		if !ok {
			_ = unix.Close(mfd)
		}
	}()

	if err := unix.IoctlSetPointerInt(mfd, unix.TIOCSPTLCK, 0); err != nil {
		return nil, fmt.Errorf("unlock pty: %w", err)
	}
	n, err := unix.IoctlGetUint32(mfd, unix.TIOCGPTN)
	if err != nil {
		return nil, fmt.Errorf("pty number: %w", err)
	}
	name := fmt.Sprintf("/dev/pts/%d", n)

	sfd, err := unix.Open(name, unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() {
		if !ok {
			_ = unix.Close(sfd)
		}
	}()
	// Echo on the slave would loop our own output back as input.
	if err := makeRaw(sfd, baud); err != nil {
		return nil, fmt.Errorf("configure %s: %w", name, err)
	}

	if link != "" {
		_ = os.Remove(link)
		if err := os.Symlink(name, link); err != nil {
			return nil, fmt.Errorf("link %s: %w", link, err)
		}
		defer func() {
			if !ok {
				_ = os.Remove(link)
			}
		}()
	}

	// Non-blocking so the runtime poller can apply read deadlines.
	if err := unix.SetNonblock(mfd, true); err != nil {
		return nil, err
	}
	master := os.NewFile(uintptr(mfd), "/dev/ptmx")
	if master == nil {
		return nil, fmt.Errorf("os.NewFile failed")
	}
	ok = true

	rw := &deadlineReader{f: master, timeout: readTimeout}
	reconf := func(b int) error { return makeRaw(sfd, b) }
	closer := func() error {
		if link != "" {
			_ = os.Remove(link)
		}
		err := master.Close()
		if cerr := unix.Close(sfd); err == nil {
			err = cerr
		}
		return err
	}
	displayName := name
	if link != "" {
		displayName = link
	}
	return newPort(displayName, rw, baud, reconf, closer), nil
}

// deadlineReader bounds each read by timeout and reports an expired
// deadline as no data.
type deadlineReader struct {
	f       *os.File
	timeout time.Duration
}

func (d *deadlineReader) Read(p []byte) (int, error) {
	if err := d.f.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, err
	}
	n, err := d.f.Read(p)
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, syscall.EIO) {
		if errors.Is(err, syscall.EIO) {
			time.Sleep(d.timeout)
		}
		return n, errNoData
	}
	return n, err
}

func (d *deadlineReader) Write(p []byte) (int, error) {
	return d.f.Write(p)
}

func makeRaw(fd int, baud int) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	spd, err := baudToUnix(baud)
	if err != nil {
		return err
	}

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8

	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	t.Cflag &^= unix.CBAUD
	t.Cflag |= spd
	t.Ispeed = spd
	t.Ospeed = spd

	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}

func baudToUnix(baud int) (uint32, error) {
	switch baud {
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 921600:
		return unix.B921600, nil
	default:
		return 0, fmt.Errorf("unsupported baud %d", baud)
	}
}
