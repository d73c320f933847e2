/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package api

import (
	"fmt"
	"net/http"

	"github.com/ant0ine/go-json-rest/rest"
)

type Server struct {
	Port uint16
	TLS  struct {
		Cert string // Path for a TLS certification file.
		Key  string // Path for a TLS private key file.
	}
}

// Handler builds the HTTP handler that serves routes behind the common middlewares.
func (r *Server) Handler(routes ...*rest.Route) (http.Handler, error) {
	api := rest.NewApi()
	// Middleware to log the client requests.
	api.Use(rest.MiddlewareSimple(func(handler rest.HandlerFunc) rest.HandlerFunc {
		return func(writer rest.ResponseWriter, request *rest.Request) {
			logger.Debugf("%v %v from %v", request.Method, request.URL.Path, request.RemoteAddr)
			handler(writer, request)
		}
	}))
	// Middleware to set the CORS header.
	api.Use(rest.MiddlewareSimple(func(handler rest.HandlerFunc) rest.HandlerFunc {
		return func(writer rest.ResponseWriter, request *rest.Request) {
			writer.Header().Set("Access-Control-Allow-Origin", "*")
			handler(writer, request)
		}
	}))
	router, err := rest.MakeRouter(routes...)
	if err != nil {
		return nil, err
	}
	api.SetApp(router)

	return api.MakeHandler(), nil
}

func (r *Server) Serve(routes ...*rest.Route) error {
	handler, err := r.Handler(routes...)
	if err != nil {
		return err
	}

	// Listen on all interfaces.
	addr := fmt.Sprintf(":%v", r.Port)
	logger.Infof("listening on %v (TLS=%v)", addr, r.TLS.Cert != "" && r.TLS.Key != "")
	if r.TLS.Cert != "" && r.TLS.Key != "" {
		err = http.ListenAndServeTLS(addr, r.TLS.Cert, r.TLS.Key, handler)
	} else {
		err = http.ListenAndServe(addr, handler)
	}

	return err
}
