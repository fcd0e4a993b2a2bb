package inference

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/vedant281104/AgriShield/internal/imaging"
)

// The scorer service has a single unary method. Both request and response
// are BytesValue messages holding little-endian float32 arrays: the request
// is the input tensor in NHWC order, the response the score vector.
const (
	ScorerServiceName = "agrishield.inference.v1.Scorer"
	scoreMethod       = "/" + ScorerServiceName + "/Score"
)

// ScorerServer is the server API for the scorer service.
type ScorerServer interface {
	Score(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

var scorerServiceDesc = grpc.ServiceDesc{
	ServiceName: ScorerServiceName,
	HandlerType: (*ScorerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Score", Handler: scoreHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "agrishield/inference/v1/scorer",
}

func scoreHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScorerServer).Score(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: scoreMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ScorerServer).Score(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterScorer exposes m on s.
func RegisterScorer(s *grpc.Server, m Model) {
	s.RegisterService(&scorerServiceDesc, &modelScorer{model: m})
}

type modelScorer struct {
	model Model
}

func (s *modelScorer) Score(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	values, err := decodeFloats(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	input := imaging.Tensor{Shape: imaging.InputShape(), Data: values}
	if err := input.Validate(imaging.InputShape()); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	scores, err := s.model.Predict(ctx, input)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return wrapperspb.Bytes(encodeFloats(scores)), nil
}

// RemoteModel calls a scorer service.
type RemoteModel struct {
	conn   *grpc.ClientConn
	target string
}

// DialRemote creates a client for the scorer at target. The connection is
// established lazily on the first Predict.
func DialRemote(target string, opts ...grpc.DialOption) (*RemoteModel, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial scorer %s: %w", target, err)
	}
	return &RemoteModel{conn: conn, target: target}, nil
}

func (m *RemoteModel) Predict(ctx context.Context, input imaging.Tensor) ([]float32, error) {
	out := new(wrapperspb.BytesValue)
	if err := m.conn.Invoke(ctx, scoreMethod, wrapperspb.Bytes(encodeFloats(input.Data)), out); err != nil {
		return nil, fmt.Errorf("scorer %s: %w", m.target, err)
	}

	scores, err := decodeFloats(out.GetValue())
	if err != nil {
		return nil, fmt.Errorf("scorer %s: %w", m.target, err)
	}
	return scores, nil
}

func (m *RemoteModel) Close() error {
	return m.conn.Close()
}

func encodeFloats(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}

func decodeFloats(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("payload of %d bytes is not a float32 array", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
