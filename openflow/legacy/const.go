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

package legacy

// OpenFlow 1.0 ofp_flow_wildcards.
const (
	OFPFW_IN_PORT  = 1 << 0 /* Switch input port. */
	OFPFW_DL_VLAN  = 1 << 1 /* VLAN id. */
	OFPFW_DL_SRC   = 1 << 2 /* Ethernet source address. */
	OFPFW_DL_DST   = 1 << 3 /* Ethernet destination address. */
	OFPFW_DL_TYPE  = 1 << 4 /* Ethernet frame type. */
	OFPFW_NW_PROTO = 1 << 5 /* IP protocol. */
	OFPFW_TP_SRC   = 1 << 6 /* TCP/UDP source port. */
	OFPFW_TP_DST   = 1 << 7 /* TCP/UDP destination port. */

	/* IP source address wildcard bit count. 0 is exact match, 1 ignores the
	 * LSB, 2 ignores the 2 least-significant bits, ..., 32 and higher wildcard
	 * the entire field. This is the *opposite* of the usual convention where
	 * e.g. /24 indicates that 8 bits (not 24 bits) are wildcarded. */
	OFPFW_NW_SRC_SHIFT = 8
	OFPFW_NW_SRC_BITS  = 6
	OFPFW_NW_SRC_MASK  = ((1 << OFPFW_NW_SRC_BITS) - 1) << OFPFW_NW_SRC_SHIFT
	OFPFW_NW_SRC_ALL   = 32 << OFPFW_NW_SRC_SHIFT

	/* IP destination address wildcard bit count. Same format as source. */
	OFPFW_NW_DST_SHIFT = 14
	OFPFW_NW_DST_BITS  = 6
	OFPFW_NW_DST_MASK  = ((1 << OFPFW_NW_DST_BITS) - 1) << OFPFW_NW_DST_SHIFT
	OFPFW_NW_DST_ALL   = 32 << OFPFW_NW_DST_SHIFT

	OFPFW_DL_VLAN_PCP = 1 << 20 /* VLAN priority. */
	OFPFW_NW_TOS      = 1 << 21 /* IP ToS (DSCP field, 6 bits). */

	/* Wildcard all fields. */
	OFPFW_ALL = ((1 << 22) - 1)
)

// OpenFlow 1.1 ofp_flow_wildcards. Addresses and metadata are wildcarded by their masks.
const (
	OFPFW11_IN_PORT     = 1 << 0 /* Switch input port. */
	OFPFW11_DL_VLAN     = 1 << 1 /* VLAN id. */
	OFPFW11_DL_VLAN_PCP = 1 << 2 /* VLAN priority. */
	OFPFW11_DL_TYPE     = 1 << 3 /* Ethernet frame type. */
	OFPFW11_NW_TOS      = 1 << 4 /* IP ToS (DSCP field, 6 bits). */
	OFPFW11_NW_PROTO    = 1 << 5 /* IP protocol. */
	OFPFW11_TP_SRC      = 1 << 6 /* TCP/UDP/SCTP source port. */
	OFPFW11_TP_DST      = 1 << 7 /* TCP/UDP/SCTP destination port. */
	OFPFW11_MPLS_LABEL  = 1 << 8 /* MPLS label. */
	OFPFW11_MPLS_TC     = 1 << 9 /* MPLS TC. */

	/* Wildcard all fields. */
	OFPFW11_ALL = ((1 << 10) - 1)
)

const (
	OFPMT_STANDARD = 0 /* Deprecated. */
)

const (
	// Match on packets without a VLAN tag (1.0 OFP_VLAN_NONE, 1.1 OFPVID_NONE).
	OFPVID_NONE = 0xffff
	// Match on any packet with a VLAN tag, 1.1 only.
	OFPVID_ANY = 0xfffe
)

const (
	// Reserved 16-bit port numbers of OpenFlow 1.0.
	OFPP_MAX       = 0xff00
	OFPP_IN_PORT   = 0xfff8
	OFPP_NONE      = 0xffff
	OFPP11_MAX     = 0xffffff00
	OFPP11_IN_PORT = 0xfffffff8
	OFPP11_ANY     = 0xffffffff
)

const (
	OF10MatchSize = 40
	OF11MatchSize = 88
)
