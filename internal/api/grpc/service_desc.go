package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	RentalServiceName       = "rentalhub.v1.RentalService"
	NotificationServiceName = "rentalhub.v1.NotificationService"
	ReviewServiceName       = "rentalhub.v1.ReviewService"
)

type RentalServiceServer interface {
	SubmitRentalRequest(context.Context, *SubmitRentalRequestRequest) (*RentalResponse, error)
	ProposeModification(context.Context, *ModificationRequest) (*RentalResponse, error)
	AcceptModification(context.Context, *RentalIDRequest) (*RentalResponse, error)
	CounterPropose(context.Context, *ModificationRequest) (*RentalResponse, error)
	ApproveRentalRequest(context.Context, *RentalIDRequest) (*RentalResponse, error)
	DeclineRentalRequest(context.Context, *ReasonRequest) (*RentalResponse, error)
	CancelRental(context.Context, *ReasonRequest) (*RentalResponse, error)
	CompleteRental(context.Context, *RentalIDRequest) (*RentalResponse, error)
	PostMessage(context.Context, *PostMessageRequest) (*RentalResponse, error)
	GetRental(context.Context, *RentalIDRequest) (*RentalResponse, error)
	ListIncomingRequests(context.Context, *ListRentalsRequest) (*ListRentalsResponse, error)
	ListOutgoingRequests(context.Context, *ListRentalsRequest) (*ListRentalsResponse, error)
}

type NotificationServiceServer interface {
	GetNotifications(context.Context, *GetNotificationsRequest) (*GetNotificationsResponse, error)
	MarkNotificationRead(context.Context, *MarkNotificationReadRequest) (*MarkNotificationReadResponse, error)
}

type ReviewServiceServer interface {
	SubmitReview(context.Context, *SubmitReviewRequest) (*ReviewResponse, error)
	ListUserReviews(context.Context, *ListUserReviewsRequest) (*ListUserReviewsResponse, error)
	ListRentalReviews(context.Context, *RentalIDRequest) (*ListReviewsResponse, error)
}

// unary adapts a typed handler method to grpc.MethodHandler, running the
// server's interceptor chain the way generated code does.
func unary[S, Req, Resp any](fullMethod string, fn func(S, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return fn(srv.(S), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func rentalMethod[Req, Resp any](name string, fn func(RentalServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler:    unary("/"+RentalServiceName+"/"+name, fn),
	}
}

func notificationMethod[Req, Resp any](name string, fn func(NotificationServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler:    unary("/"+NotificationServiceName+"/"+name, fn),
	}
}

func reviewMethod[Req, Resp any](name string, fn func(ReviewServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler:    unary("/"+ReviewServiceName+"/"+name, fn),
	}
}

var RentalServiceDesc = grpc.ServiceDesc{
	ServiceName: RentalServiceName,
	HandlerType: (*RentalServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rentalMethod("SubmitRentalRequest", RentalServiceServer.SubmitRentalRequest),
		rentalMethod("ProposeModification", RentalServiceServer.ProposeModification),
		rentalMethod("AcceptModification", RentalServiceServer.AcceptModification),
		rentalMethod("CounterPropose", RentalServiceServer.CounterPropose),
		rentalMethod("ApproveRentalRequest", RentalServiceServer.ApproveRentalRequest),
		rentalMethod("DeclineRentalRequest", RentalServiceServer.DeclineRentalRequest),
		rentalMethod("CancelRental", RentalServiceServer.CancelRental),
		rentalMethod("CompleteRental", RentalServiceServer.CompleteRental),
		rentalMethod("PostMessage", RentalServiceServer.PostMessage),
		rentalMethod("GetRental", RentalServiceServer.GetRental),
		rentalMethod("ListIncomingRequests", RentalServiceServer.ListIncomingRequests),
		rentalMethod("ListOutgoingRequests", RentalServiceServer.ListOutgoingRequests),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rentalhub/v1/rental.proto",
}

var NotificationServiceDesc = grpc.ServiceDesc{
	ServiceName: NotificationServiceName,
	HandlerType: (*NotificationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		notificationMethod("GetNotifications", NotificationServiceServer.GetNotifications),
		notificationMethod("MarkNotificationRead", NotificationServiceServer.MarkNotificationRead),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rentalhub/v1/notification.proto",
}

var ReviewServiceDesc = grpc.ServiceDesc{
	ServiceName: ReviewServiceName,
	HandlerType: (*ReviewServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		reviewMethod("SubmitReview", ReviewServiceServer.SubmitReview),
		reviewMethod("ListUserReviews", ReviewServiceServer.ListUserReviews),
		reviewMethod("ListRentalReviews", ReviewServiceServer.ListRentalReviews),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rentalhub/v1/review.proto",
}

func RegisterRentalServiceServer(s grpc.ServiceRegistrar, srv RentalServiceServer) {
	s.RegisterService(&RentalServiceDesc, srv)
}

func RegisterNotificationServiceServer(s grpc.ServiceRegistrar, srv NotificationServiceServer) {
	s.RegisterService(&NotificationServiceDesc, srv)
}

func RegisterReviewServiceServer(s grpc.ServiceRegistrar, srv ReviewServiceServer) {
	s.RegisterService(&ReviewServiceDesc, srv)
}
