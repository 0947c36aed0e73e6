package tracking

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// WebcamSource opens a local capture device and returns a FrameSource that
// reads one frame per call, encoded as JPEG. The returned closer releases
// the device; the source is not safe for concurrent use.
func WebcamSource(device int) (FrameSource, func(), error) {
	cap, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, nil, fmt.Errorf("open capture device %d: %w", device, err)
	}

	var mu sync.Mutex
	mat := gocv.NewMat()
	closed := false

	source := func() ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return nil, fmt.Errorf("capture device %d closed", device)
		}
		if ok := cap.Read(&mat); !ok || mat.Empty() {
			return nil, fmt.Errorf("capture device %d: empty frame", device)
		}
		buf, err := gocv.IMEncode(".jpg", mat)
		if err != nil {
			return nil, fmt.Errorf("encode frame: %w", err)
		}
		defer buf.Close()
		data := make([]byte, buf.Len())
		copy(data, buf.GetBytes())
		return data, nil
	}

	closer := func() {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		closed = true
		mat.Close()
		cap.Close()
	}

	return source, closer, nil
}
