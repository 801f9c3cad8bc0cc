package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"

	"greeter"
)

// GreeterEndpoints collects the endpoints of the greeter resource.
type GreeterEndpoints struct {
	CreateGreeterEndpoint  endpoint.Endpoint
	UpdateGreeterEndpoint  endpoint.Endpoint
	GetAllGreetersEndpoint endpoint.Endpoint
	GetGreeterEndpoint     endpoint.Endpoint
	DeleteGreeterEndpoint  endpoint.Endpoint
}

// MakeServerEndpoints returns an Endpoints struct where each endpoint invokes
// the corresponding method on the provided service. Useful in a server.
func MakeServerEndpoints(s greeter.GreeterService) GreeterEndpoints {
	return GreeterEndpoints{
		CreateGreeterEndpoint:  MakeCreateGreeterEndpoint(s),
		UpdateGreeterEndpoint:  MakeUpdateGreeterEndpoint(s),
		GetAllGreetersEndpoint: MakeGetAllGreetersEndpoint(s),
		GetGreeterEndpoint:     MakeGetGreeterEndpoint(s),
		DeleteGreeterEndpoint:  MakeDeleteGreeterEndpoint(s),
	}
}

type greeterRequest struct {
	Greeter greeter.GreeterDTO
}

type idRequest struct {
	ID int64
}

type createGreeterResponse struct {
	Greeter *greeter.GreeterDTO
}

type updateGreeterResponse struct {
	Greeter *greeter.GreeterDTO
}

type deleteGreeterResponse struct {
	ID int64
}

// MakeCreateGreeterEndpoint validates the body and rejects greeters that
// already carry an ID.
func MakeCreateGreeterEndpoint(s greeter.GreeterService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(greeterRequest)
		if err := greeter.ValidateGreeter(&req.Greeter).Err(); err != nil {
			return nil, err
		} else if req.Greeter.ID != nil {
			return nil, greeter.BadRequestf(greeter.KeyIDExists, "A new greeter cannot already have an ID.")
		}

		dto, err := s.Save(ctx, req.Greeter)
		if err != nil {
			return nil, err
		}
		return createGreeterResponse{Greeter: dto}, nil
	}
}

// MakeUpdateGreeterEndpoint validates the body and rejects greeters without an ID.
func MakeUpdateGreeterEndpoint(s greeter.GreeterService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(greeterRequest)
		if err := greeter.ValidateGreeter(&req.Greeter).Err(); err != nil {
			return nil, err
		} else if req.Greeter.ID == nil {
			return nil, greeter.BadRequestf(greeter.KeyIDNull, "Invalid id.")
		}

		dto, err := s.Save(ctx, req.Greeter)
		if err != nil {
			return nil, err
		}
		return updateGreeterResponse{Greeter: dto}, nil
	}
}

// MakeGetAllGreetersEndpoint lists every greeter.
func MakeGetAllGreetersEndpoint(s greeter.GreeterService) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		return s.FindAll(ctx)
	}
}

// MakeGetGreeterEndpoint fetches a single greeter by the path ID.
func MakeGetGreeterEndpoint(s greeter.GreeterService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return s.FindOne(ctx, request.(idRequest).ID)
	}
}

// MakeDeleteGreeterEndpoint deletes the greeter with the path ID.
func MakeDeleteGreeterEndpoint(s greeter.GreeterService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(idRequest)
		if err := s.Delete(ctx, req.ID); err != nil {
			return nil, err
		}
		return deleteGreeterResponse{ID: req.ID}, nil
	}
}

// registerRoutes sets up handlers for all of the service endpoints.
func (s *Server) registerRoutes() {
	e := MakeServerEndpoints(s.GreeterService)
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(s.encodeError),
	}

	r := s.router.PathPrefix("/api").Subrouter()
	r.Handle("/greeters", httptransport.NewServer(
		e.CreateGreeterEndpoint,
		decodeGreeterRequest,
		s.encodeCreateGreeterResponse,
		options...,
	)).Methods("POST")
	r.Handle("/greeters", httptransport.NewServer(
		e.UpdateGreeterEndpoint,
		decodeGreeterRequest,
		s.encodeUpdateGreeterResponse,
		options...,
	)).Methods("PUT")
	r.Handle("/greeters", httptransport.NewServer(
		e.GetAllGreetersEndpoint,
		httptransport.NopRequestDecoder,
		encodeResponse,
		options...,
	)).Methods("GET")
	r.Handle("/greeters/{id}", httptransport.NewServer(
		e.GetGreeterEndpoint,
		decodeIDRequest,
		encodeResponse,
		options...,
	)).Methods("GET")
	r.Handle("/greeters/{id}", httptransport.NewServer(
		e.DeleteGreeterEndpoint,
		decodeIDRequest,
		s.encodeDeleteGreeterResponse,
		options...,
	)).Methods("DELETE")
}

func decodeGreeterRequest(_ context.Context, r *http.Request) (request interface{}, err error) {
	var req greeterRequest
	if err := json.NewDecoder(r.Body).Decode(&req.Greeter); err != nil {
		return nil, greeter.Errorf(greeter.EINVALID, "Invalid JSON body.")
	}
	return req, nil
}

func decodeIDRequest(_ context.Context, r *http.Request) (request interface{}, err error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return nil, greeter.Errorf(greeter.EINVALID, "Invalid value for param 'id'.")
	}
	return idRequest{ID: id}, nil
}

func (s *Server) encodeCreateGreeterResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	dto := response.(createGreeterResponse).Greeter
	w.Header().Set("Location", fmt.Sprintf("/api/greeters/%d", *dto.ID))
	s.setAlert(w, fmt.Sprintf("A new %s is created with identifier %d", greeter.EntityName, *dto.ID), *dto.ID)
	return encodeJSON(w, http.StatusCreated, dto)
}

func (s *Server) encodeUpdateGreeterResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	dto := response.(updateGreeterResponse).Greeter
	s.setAlert(w, fmt.Sprintf("A %s is updated with identifier %d", greeter.EntityName, *dto.ID), *dto.ID)
	return encodeJSON(w, http.StatusOK, dto)
}

func (s *Server) encodeDeleteGreeterResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	id := response.(deleteGreeterResponse).ID
	s.setAlert(w, fmt.Sprintf("A %s is deleted with identifier %d", greeter.EntityName, id), id)
	w.WriteHeader(http.StatusNoContent)
	return nil
}
