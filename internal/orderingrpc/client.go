package orderingrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the Ordering service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Sort returns the names in import order.
func (c *Client) Sort(ctx context.Context, names []string, opts ...grpc.CallOption) ([]string, error) {
	values := make([]any, len(names))
	for i, n := range names {
		values[i] = n
	}
	in, err := structpb.NewStruct(map[string]any{candidatesField: values})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, sortMethod, in, out, opts...); err != nil {
		return nil, err
	}

	list := out.GetFields()[orderField].GetListValue()
	order := make([]string, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		s, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is not a string", orderField, i)
		}
		order = append(order, s.StringValue)
	}
	return order, nil
}
