package erlang

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Probe describes the hidden erl node that samples the target node.
// It connects over Erlang distribution, prints the version banner once,
// then prints one begin/end block per interval until it is killed or the
// target goes away.
type Probe struct {
	Erl      string
	Node     string
	Cookie   string
	Interval time.Duration
}

// probeTemplate is the -eval expression. %[1]s is the node name as an
// Erlang string literal, %[2]d the interval in milliseconds.
const probeTemplate = `Node = list_to_atom(%[1]s),
case net_kernel:connect_node(Node) of
  true -> ok;
  _ -> io:format("error cannot connect to ~s~n", [Node]), halt(2)
end,
Call = fun(M, F, A) ->
  case rpc:call(Node, M, F, A) of
    {badrpc, R} -> io:format("error ~0p~n", [R]), halt(3);
    V -> V
  end
end,
io:format("version ~ts~n", [string:trim(Call(erlang, system_info, [system_version]))]),
Loop = fun Loop() ->
  Mem = Call(erlang, memory, []),
  {{input, In}, {output, Out}} = Call(erlang, statistics, [io]),
  {Reds, _} = Call(erlang, statistics, [reductions]),
  {GCs, Words, _} = Call(erlang, statistics, [garbage_collection]),
  {Ctx, _} = Call(erlang, statistics, [context_switches]),
  io:format("begin ~B~n", [erlang:system_time(millisecond)]),
  io:format("memory ~B~n", [proplists:get_value(total, Mem)]),
  [io:format("memory.~s ~B~n", [K, V]) || {K, V} <- Mem, K =/= total],
  io:format("process_count ~B~n", [Call(erlang, system_info, [process_count])]),
  io:format("port_count ~B~n", [Call(erlang, system_info, [port_count])]),
  io:format("atom_count ~B~n", [Call(erlang, system_info, [atom_count])]),
  io:format("ets_count ~B~n", [length(Call(ets, all, []))]),
  io:format("run_queue ~B~n", [Call(erlang, statistics, [run_queue])]),
  io:format("schedulers ~B~n", [Call(erlang, system_info, [schedulers_online])]),
  io:format("io ~B~nio.input ~B~nio.output ~B~n", [In + Out, In, Out]),
  io:format("reductions ~B~n", [Reds]),
  io:format("gc ~B~ngc.words_reclaimed ~B~n", [GCs, Words]),
  io:format("context_switches ~B~n", [Ctx]),
  io:format("end~n"),
  timer:sleep(%[2]d),
  Loop()
end,
Loop().`

// Expr returns the Erlang expression passed to -eval.
func (p Probe) Expr() string {
	interval := p.Interval.Milliseconds()
	if interval < 1 {
		interval = 1
	}
	return fmt.Sprintf(probeTemplate, strconv.Quote(p.Node), interval)
}

// Args returns the full argv for the probe, erl first. id keeps the probe's
// own node name unique per process.
func (p Probe) Args(id int) []string {
	nameFlag := "-sname"
	if _, host, ok := strings.Cut(p.Node, "@"); ok && strings.Contains(host, ".") {
		nameFlag = "-name"
	}

	// erl completes the host part of the probe's own name.
	args := []string{p.Erl, "-noshell", "-hidden", nameFlag, fmt.Sprintf("beamtop_%d", id)}
	if p.Cookie != "" {
		args = append(args, "-setcookie", p.Cookie)
	}
	return append(args, "-eval", p.Expr())
}
