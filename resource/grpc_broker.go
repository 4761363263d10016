package resource

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/hwcodec/mcil/codecclient"
)

// GRPCBroker implements codecclient.ResourceBroker by delegating to a
// platform resource manager reachable over gRPC — the Go-native analogue of
// uMediaServer::ResourceManagerClient's IPC round trip in
// resourcefacilitator/requestor.cpp, which marshals an AcquireResources
// request over a connector and parses the JSON reply back into a port map.
// Wire messages are google.protobuf.Struct rather than a project-specific
// .proto schema, since the broker's request/response shape is exactly the
// same small set of scalar fields the original passed as JSON payloads.
type GRPCBroker struct {
	conn   *grpc.ClientConn
	dialTo string
}

var _ codecclient.ResourceBroker = (*GRPCBroker)(nil)

const (
	acquireMethod = "/mcil.resource.ResourceBroker/Acquire"
	releaseMethod = "/mcil.resource.ResourceBroker/Release"
)

// DialGRPCBroker connects to a resource manager at addr. The connection is
// insecure transport-credential by default, matching a same-host IPC
// endpoint; callers needing TLS should dial their own *grpc.ClientConn and
// use NewGRPCBrokerFromConn instead.
func DialGRPCBroker(addr string) (*GRPCBroker, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("resource: dial %s: %w", addr, err)
	}
	return &GRPCBroker{conn: conn, dialTo: addr}, nil
}

// NewGRPCBrokerFromConn wraps an already-established connection, for callers
// that manage their own dial options (mTLS, interceptors, etc).
func NewGRPCBrokerFromConn(conn *grpc.ClientConn) *GRPCBroker {
	return &GRPCBroker{conn: conn}
}

// Close releases the underlying connection.
func (b *GRPCBroker) Close() error {
	if b.conn == nil {
		return nil
	}
	return b.conn.Close()
}

func (b *GRPCBroker) Acquire(deviceType codecclient.DeviceType, codec codecclient.Codec, width, height, fps uint32) (codecclient.ResourceToken, int, error) {
	req, err := structpb.NewStruct(map[string]any{
		"device_type": float64(deviceType),
		"codec":       float64(codec),
		"width":       float64(width),
		"height":      float64(height),
		"fps":         float64(fps),
	})
	if err != nil {
		return "", 0, fmt.Errorf("resource: build acquire request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp := &structpb.Struct{}
	if err := b.conn.Invoke(ctx, acquireMethod, req, resp); err != nil {
		return "", 0, fmt.Errorf("resource: acquire rpc: %w", err)
	}

	token, ok := resp.Fields["token"]
	if !ok {
		return "", 0, fmt.Errorf("resource: acquire response missing token field")
	}
	port, ok := resp.Fields["port_index"]
	if !ok {
		return "", 0, fmt.Errorf("resource: acquire response missing port_index field")
	}
	return codecclient.ResourceToken(token.GetStringValue()), int(port.GetNumberValue()), nil
}

func (b *GRPCBroker) Release(token codecclient.ResourceToken, portIndex int) error {
	req, err := structpb.NewStruct(map[string]any{
		"token":      string(token),
		"port_index": float64(portIndex),
	})
	if err != nil {
		return fmt.Errorf("resource: build release request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp := &structpb.Struct{}
	if err := b.conn.Invoke(ctx, releaseMethod, req, resp); err != nil {
		return fmt.Errorf("resource: release rpc: %w", err)
	}
	return nil
}
