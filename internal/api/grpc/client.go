package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// RentalServiceClient is the hand-written client for rentalhub.v1.RentalService.
// Every call is sent with the JSON content-subtype.
type RentalServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewRentalServiceClient(cc grpc.ClientConnInterface) *RentalServiceClient {
	return &RentalServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func rentalPath(name string) string {
	return "/" + RentalServiceName + "/" + name
}

func (c *RentalServiceClient) SubmitRentalRequest(ctx context.Context, in *SubmitRentalRequestRequest, opts ...grpc.CallOption) (*RentalResponse, error) {
	return invoke[RentalResponse](ctx, c.cc, rentalPath("SubmitRentalRequest"), in, opts)
}

func (c *RentalServiceClient) ProposeModification(ctx context.Context, in *ModificationRequest, opts ...grpc.CallOption) (*RentalResponse, error) {
	return invoke[RentalResponse](ctx, c.cc, rentalPath("ProposeModification"), in, opts)
}

func (c *RentalServiceClient) AcceptModification(ctx context.Context, in *RentalIDRequest, opts ...grpc.CallOption) (*RentalResponse, error) {
	return invoke[RentalResponse](ctx, c.cc, rentalPath("AcceptModification"), in, opts)
}

func (c *RentalServiceClient) CounterPropose(ctx context.Context, in *ModificationRequest, opts ...grpc.CallOption) (*RentalResponse, error) {
	return invoke[RentalResponse](ctx, c.cc, rentalPath("CounterPropose"), in, opts)
}

func (c *RentalServiceClient) ApproveRentalRequest(ctx context.Context, in *RentalIDRequest, opts ...grpc.CallOption) (*RentalResponse, error) {
	return invoke[RentalResponse](ctx, c.cc, rentalPath("ApproveRentalRequest"), in, opts)
}

func (c *RentalServiceClient) DeclineRentalRequest(ctx context.Context, in *ReasonRequest, opts ...grpc.CallOption) (*RentalResponse, error) {
	return invoke[RentalResponse](ctx, c.cc, rentalPath("DeclineRentalRequest"), in, opts)
}

func (c *RentalServiceClient) CancelRental(ctx context.Context, in *ReasonRequest, opts ...grpc.CallOption) (*RentalResponse, error) {
	return invoke[RentalResponse](ctx, c.cc, rentalPath("CancelRental"), in, opts)
}

func (c *RentalServiceClient) CompleteRental(ctx context.Context, in *RentalIDRequest, opts ...grpc.CallOption) (*RentalResponse, error) {
	return invoke[RentalResponse](ctx, c.cc, rentalPath("CompleteRental"), in, opts)
}

func (c *RentalServiceClient) PostMessage(ctx context.Context, in *PostMessageRequest, opts ...grpc.CallOption) (*RentalResponse, error) {
	return invoke[RentalResponse](ctx, c.cc, rentalPath("PostMessage"), in, opts)
}

func (c *RentalServiceClient) GetRental(ctx context.Context, in *RentalIDRequest, opts ...grpc.CallOption) (*RentalResponse, error) {
	return invoke[RentalResponse](ctx, c.cc, rentalPath("GetRental"), in, opts)
}

func (c *RentalServiceClient) ListIncomingRequests(ctx context.Context, in *ListRentalsRequest, opts ...grpc.CallOption) (*ListRentalsResponse, error) {
	return invoke[ListRentalsResponse](ctx, c.cc, rentalPath("ListIncomingRequests"), in, opts)
}

func (c *RentalServiceClient) ListOutgoingRequests(ctx context.Context, in *ListRentalsRequest, opts ...grpc.CallOption) (*ListRentalsResponse, error) {
	return invoke[ListRentalsResponse](ctx, c.cc, rentalPath("ListOutgoingRequests"), in, opts)
}

type NotificationServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewNotificationServiceClient(cc grpc.ClientConnInterface) *NotificationServiceClient {
	return &NotificationServiceClient{cc: cc}
}

func (c *NotificationServiceClient) GetNotifications(ctx context.Context, in *GetNotificationsRequest, opts ...grpc.CallOption) (*GetNotificationsResponse, error) {
	return invoke[GetNotificationsResponse](ctx, c.cc, "/"+NotificationServiceName+"/GetNotifications", in, opts)
}

func (c *NotificationServiceClient) MarkNotificationRead(ctx context.Context, in *MarkNotificationReadRequest, opts ...grpc.CallOption) (*MarkNotificationReadResponse, error) {
	return invoke[MarkNotificationReadResponse](ctx, c.cc, "/"+NotificationServiceName+"/MarkNotificationRead", in, opts)
}

type ReviewServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewReviewServiceClient(cc grpc.ClientConnInterface) *ReviewServiceClient {
	return &ReviewServiceClient{cc: cc}
}

func (c *ReviewServiceClient) SubmitReview(ctx context.Context, in *SubmitReviewRequest, opts ...grpc.CallOption) (*ReviewResponse, error) {
	return invoke[ReviewResponse](ctx, c.cc, "/"+ReviewServiceName+"/SubmitReview", in, opts)
}

func (c *ReviewServiceClient) ListUserReviews(ctx context.Context, in *ListUserReviewsRequest, opts ...grpc.CallOption) (*ListUserReviewsResponse, error) {
	return invoke[ListUserReviewsResponse](ctx, c.cc, "/"+ReviewServiceName+"/ListUserReviews", in, opts)
}

func (c *ReviewServiceClient) ListRentalReviews(ctx context.Context, in *RentalIDRequest, opts ...grpc.CallOption) (*ListReviewsResponse, error) {
	return invoke[ListReviewsResponse](ctx, c.cc, "/"+ReviewServiceName+"/ListRentalReviews", in, opts)
}
